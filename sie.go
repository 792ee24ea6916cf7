package levfaktura

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// legacyCodePages lists the encoding probe order: code page 437, code
// page 850, Latin-1. UTF-8 is tried last, after this list, since it is
// not a charmap.Charmap.
var legacyCodePages = []struct {
	name string
	enc  *charmap.Charmap
}{
	{"IBM437", charmap.CodePage437},
	{"IBM850", charmap.CodePage850},
	{"ISO-8859-1", charmap.ISO8859_1},
}

// decodeSIEBytes turns a raw SIE byte stream into text, trying each legacy
// code page in turn before falling back to UTF-8. The first candidate that
// decodes the full stream without error is used.
func decodeSIEBytes(data []byte) (text string, encodingName string, err error) {
	for _, cp := range legacyCodePages {
		out, decErr := cp.enc.NewDecoder().Bytes(data)
		if decErr == nil {
			return string(out), cp.name, nil
		}
	}
	if utf8.Valid(data) {
		return string(data), "UTF-8", nil
	}
	offset := firstInvalidUTF8Offset(data)
	return "", "", fmt.Errorf("no encoding in the probe chain (IBM437, IBM850, ISO-8859-1, UTF-8) accepted the byte at offset %d", offset)
}

func firstInvalidUTF8Offset(data []byte) int64 {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return int64(i)
		}
		i += size
	}
	return int64(len(data))
}

// scanState tracks the two-state voucher-block scanner: outside a
// #VER/{...} block, or inside one accumulating #TRANS lines.
type scanState int

const (
	scanOutsideBlock scanState = iota
	scanAwaitingBlock
	scanInsideBlock
)

// DecodeSIEFile reads and decodes the SIE file at path.
func DecodeSIEFile(path string, cfg Config) ([]Voucher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Offset: -1, err: err}
	}
	vs, err := decodeSIE(data, cfg)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Path = path
			return nil, de
		}
		return nil, &DecodeError{Path: path, Offset: -1, err: err}
	}
	return vs, nil
}

// DecodeSIE reads and decodes a SIE byte stream from r.
func DecodeSIE(r io.Reader, cfg Config) ([]Voucher, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Offset: -1, err: err}
	}
	return decodeSIE(data, cfg)
}

func decodeSIE(data []byte, cfg Config) ([]Voucher, error) {
	text, encName, err := decodeSIEBytes(data)
	if err != nil {
		return nil, &DecodeError{Offset: firstInvalidUTF8Offset(data), err: err}
	}
	log := cfg.logger()
	log.Debug("decoded SIE stream", "encoding", encName, "bytes", len(data))

	var (
		vouchers  []Voucher
		state     = scanOutsideBlock
		pending   Voucher
		pendingOK bool
		lineNo    int
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch state {
		case scanOutsideBlock:
			switch {
			case strings.HasPrefix(trimmed, "#VER"):
				v, ok := parseVER(trimmed, lineNo, log)
				pending = v
				pendingOK = ok
				state = scanAwaitingBlock
			case strings.HasPrefix(trimmed, "#"):
				log.Debug("header directive", "line", lineNo, "text", trimmed)
			default:
				log.Warn("unexpected line outside voucher block", "line", lineNo, "text", trimmed)
			}
		case scanAwaitingBlock:
			if trimmed != "{" {
				log.Error("expected block delimiter '{' after #VER", "line", lineNo, "text", trimmed)
				state = scanOutsideBlock
				continue
			}
			state = scanInsideBlock
		case scanInsideBlock:
			switch {
			case trimmed == "}":
				if pendingOK {
					finalizeVoucher(&pending, log)
					vouchers = append(vouchers, pending)
				}
				pending = Voucher{}
				pendingOK = false
				state = scanOutsideBlock
			case strings.HasPrefix(trimmed, "#TRANS"):
				t, ok := parseTRANS(trimmed, lineNo, log)
				if !ok {
					pendingOK = false
					continue
				}
				if pendingOK {
					pending.Transactions = append(pending.Transactions, t)
				}
			default:
				log.Warn("ignoring non-#TRANS line inside voucher block", "line", lineNo, "text", trimmed)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &DecodeError{Offset: -1, err: err}
	}

	return vouchers, nil
}

func finalizeVoucher(v *Voucher, log *slog.Logger) {
	if len(v.Transactions) == 0 {
		return
	}
	sum := v.Sum()
	if sum.Abs().GreaterThan(decimal.NewFromFloat(0.005)) {
		log.Warn("voucher does not balance", "voucher", v.ID(), "sum", sum.String())
	}
}

// parseVER parses a "#VER <series> <number> <yyyymmdd> <description>
// [<yyyymmdd>]" directive line.
func parseVER(line string, lineNo int, log *slog.Logger) (Voucher, bool) {
	fields := splitSIEFields(line)
	if len(fields) < 5 {
		log.Error("malformed #VER directive", "line", lineNo, "text", line)
		return Voucher{}, false
	}
	number, err := strconv.Atoi(fields[2])
	if err != nil {
		log.Error("malformed voucher number in #VER", "line", lineNo, "text", line)
		return Voucher{}, false
	}
	date, err := time.Parse("20060102", fields[3])
	if err != nil {
		log.Error("malformed voucher date in #VER", "line", lineNo, "text", line)
		return Voucher{}, false
	}
	v := Voucher{
		Series:      fields[1],
		Number:      number,
		Date:        date,
		Description: fields[4],
	}
	if len(fields) >= 6 {
		if regDate, err := time.Parse("20060102", fields[5]); err == nil {
			v.RegistrationDate = regDate
		}
	}
	return v, true
}

// parseTRANS parses a "#TRANS <account> {<object-list>} <signed-amount>
// [<yyyymmdd>] [<description>]" line.
func parseTRANS(line string, lineNo int, log *slog.Logger) (Transaction, bool) {
	fields := splitSIEFields(line)
	if len(fields) < 4 {
		log.Error("malformed #TRANS line", "line", lineNo, "text", line)
		return Transaction{}, false
	}
	account := fields[1]
	// fields[2] is the object-list "{...}"; accepted but not interpreted.
	amount, err := decimal.NewFromString(fields[3])
	if err != nil {
		log.Error("malformed amount in #TRANS line", "line", lineNo, "text", line)
		return Transaction{}, false
	}
	t := Transaction{Account: account, Amount: amount}

	rest := fields[4:]
	if len(rest) > 0 {
		if d, err := time.Parse("20060102", rest[0]); err == nil {
			t.Date = d
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		t.Description = strings.Join(rest, " ")
	}
	return t, true
}

// splitSIEFields tokenizes one SIE line, treating "quoted strings" and
// {brace groups} as single fields even when they contain spaces.
func splitSIEFields(line string) []string {
	var fields []string
	i, n := 0, len(line)
	for i < n {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}
		switch line[i] {
		case '"':
			j := i + 1
			for j < n && line[j] != '"' {
				j++
			}
			fields = append(fields, line[i+1:j])
			if j < n {
				j++
			}
			i = j
		case '{':
			depth := 1
			j := i + 1
			for j < n && depth > 0 {
				switch line[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
			fields = append(fields, line[i:j])
			i = j
		default:
			j := i
			for j < n && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			fields = append(fields, line[i:j])
			i = j
		}
	}
	return fields
}
