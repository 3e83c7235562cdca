// Copyright 2025 go-binmask Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fits

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ajroetker/go-binmask/mask"
)

const (
	// BlockSize is the FITS logical record size. Headers and data units are
	// padded to a multiple of it.
	BlockSize = 2880
	// CardSize is the length of one header card.
	CardSize      = 80
	cardsPerBlock = BlockSize / CardSize
)

// Card is one header keyword record.
//
// Value is nil for a keyword without a value (COMMENT, HISTORY), or one of
// bool, an integer type, float32/float64 or string. Cards parsed from a file
// carry bool, int, float64 or string.
type Card struct {
	Key     string
	Value   any
	Comment string
}

func validKey(key string) bool {
	if len(key) == 0 || len(key) > 8 {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

func commentary(key string) bool {
	return key == "COMMENT" || key == "HISTORY"
}

// format renders c as an 80 byte card image.
func (c Card) format() (string, error) {
	if !validKey(c.Key) {
		return "", fmt.Errorf("fits: keyword %q: %w", c.Key, mask.ErrIllegalInput)
	}
	var sb strings.Builder
	sb.Grow(CardSize)
	fmt.Fprintf(&sb, "%-8s", c.Key)

	if commentary(c.Key) || c.Value == nil {
		text := c.Comment
		if s, ok := c.Value.(string); ok && text == "" {
			text = s
		}
		if len(text) > CardSize-8 {
			return "", fmt.Errorf("fits: %s text too long: %w", c.Key, mask.ErrIllegalInput)
		}
		sb.WriteString(text)
		return pad(sb.String()), nil
	}

	sb.WriteString("= ")
	v, err := formatValue(c.Value)
	if err != nil {
		return "", fmt.Errorf("fits: keyword %s: %w", c.Key, err)
	}
	sb.WriteString(v)
	if c.Comment != "" {
		sb.WriteString(" / ")
		sb.WriteString(c.Comment)
	}
	if sb.Len() > CardSize {
		// Comments may be truncated, values may not.
		if 10+len(v) > CardSize {
			return "", fmt.Errorf("fits: keyword %s value too long: %w", c.Key, mask.ErrIllegalInput)
		}
		return sb.String()[:CardSize], nil
	}
	return pad(sb.String()), nil
}

func pad(s string) string {
	return s + strings.Repeat(" ", CardSize-len(s))
}

// formatValue renders fixed-format values right-justified to column 30 and
// strings quoted from column 11.
func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return fmt.Sprintf("%20s", "T"), nil
		}
		return fmt.Sprintf("%20s", "F"), nil
	case int:
		return fmt.Sprintf("%20d", x), nil
	case int8:
		return fmt.Sprintf("%20d", x), nil
	case int16:
		return fmt.Sprintf("%20d", x), nil
	case int32:
		return fmt.Sprintf("%20d", x), nil
	case int64:
		return fmt.Sprintf("%20d", x), nil
	case uint8:
		return fmt.Sprintf("%20d", x), nil
	case uint16:
		return fmt.Sprintf("%20d", x), nil
	case uint32:
		return fmt.Sprintf("%20d", x), nil
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case string:
		s := strings.ReplaceAll(x, "'", "''")
		if len(s) < 8 {
			s += strings.Repeat(" ", 8-len(s))
		}
		return "'" + s + "'", nil
	default:
		return "", fmt.Errorf("value of type %T: %w", v, mask.ErrIllegalInput)
	}
}

func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite value %v: %w", f, mask.ErrIllegalInput)
	}
	s := strconv.FormatFloat(f, 'G', -1, bits)
	if !strings.ContainsAny(s, ".E") {
		s += ".0"
	}
	return fmt.Sprintf("%20s", s), nil
}

// parseCard decodes one 80 byte card image.
func parseCard(line string) Card {
	key := strings.TrimRight(line[:8], " ")
	if commentary(key) || len(line) < 10 || line[8:10] != "= " {
		return Card{Key: key, Comment: strings.TrimRight(line[8:], " ")}
	}
	rest := line[10:]
	trimmed := strings.TrimLeft(rest, " ")
	if strings.HasPrefix(trimmed, "'") {
		var sb strings.Builder
		i := 1
		for i < len(trimmed) {
			if trimmed[i] == '\'' {
				if i+1 < len(trimmed) && trimmed[i+1] == '\'' {
					sb.WriteByte('\'')
					i += 2
					continue
				}
				break
			}
			sb.WriteByte(trimmed[i])
			i++
		}
		c := Card{Key: key, Value: strings.TrimRight(sb.String(), " ")}
		if j := strings.IndexByte(trimmed[min(i+1, len(trimmed)):], '/'); j >= 0 {
			c.Comment = strings.TrimSpace(trimmed[i+1+j+1:])
		}
		return c
	}
	value, comment, _ := strings.Cut(rest, "/")
	c := Card{Key: key, Comment: strings.TrimSpace(comment)}
	value = strings.TrimSpace(value)
	switch {
	case value == "":
	case value == "T":
		c.Value = true
	case value == "F":
		c.Value = false
	default:
		if n, err := strconv.Atoi(value); err == nil {
			c.Value = n
		} else if f, err := strconv.ParseFloat(strings.Replace(value, "D", "E", 1), 64); err == nil {
			c.Value = f
		} else {
			c.Value = value
		}
	}
	return c
}
