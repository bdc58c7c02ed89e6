package source

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const bytesPerLine = 8

// Rewrite turns a hex text dump into a C array declaration named name.
// Each 0x line is annotated with its running byte offset and an ASCII view.
func Rewrite(in io.Reader, out io.Writer, name string) error {
	bw := bufio.NewWriter(out)
	fmt.Fprintf(bw, "char %s[] = {", name)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	offset := 0
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "0x") {
			continue
		}
		ascii, n, err := asciiView(line)
		if err != nil {
			return fmt.Errorf("offset %d: %w", offset, err)
		}
		missing := max(bytesPerLine-n, 0)
		code := strings.ReplaceAll(strings.TrimSpace(line), " };", ",")
		fmt.Fprintf(bw, "%s%s /* off: %d  %s%s */\n ",
			code, strings.Repeat(" ", missing*6), offset, ascii, strings.Repeat(" ", missing))
		offset += n
	}
	if err := sc.Err(); err != nil {
		return err
	}
	bw.WriteString("};")
	return bw.Flush()
}

// asciiView renders the 0xHH tokens of line as printable characters or '.'.
func asciiView(line string) (string, int, error) {
	var b strings.Builder
	n := 0
	rest := line
	for {
		i := strings.Index(rest, "0x")
		if i < 0 {
			break
		}
		tok := rest[i+2:]
		if len(tok) > 2 {
			tok = tok[:2]
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return "", 0, fmt.Errorf("bad hex token %q", rest[i:i+2+len(tok)])
		}
		if v < 32 || v > 126 {
			b.WriteByte('.')
		} else {
			b.WriteByte(byte(v))
		}
		n++
		rest = rest[i+2:]
	}
	return b.String(), n, nil
}
