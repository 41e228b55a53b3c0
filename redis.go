package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

type sidekiqJob struct {
	Class string            `json:"class"`
	Args  []json.RawMessage `json:"args"`
	Queue string            `json:"queue"`
	JID   string            `json:"jid"`
}

func writeCommand(w *bufio.ReadWriter, cmd string, args ...string) error {
	if _, err := fmt.Fprintf(w, "*%d\r\n", 1+len(args)); err != nil {
		return err
	}
	if err := writeBulk(w, cmd); err != nil {
		return err
	}
	for _, a := range args {
		if err := writeBulk(w, a); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeBulk(w *bufio.ReadWriter, s string) error {
	if _, err := fmt.Fprintf(w, "$%d\r\n%s\r\n", len(s), s); err != nil {
		return err
	}
	return nil
}

var ioEOF = errors.New("eof")

func readLine(r *bufio.Reader) (string, error) {
	b, err := r.ReadBytes('\n')
	if err != nil {
		return "", ioEOF
	}
	if len(b) >= 2 && b[len(b)-2] == '\r' {
		b = b[:len(b)-2]
	}
	return string(b), nil
}

func readOK(rw *bufio.ReadWriter) error {
	line, err := readLine(rw.Reader)
	if err != nil {
		return err
	}
	if len(line) > 0 && line[0] == '+' {
		return nil
	}
	return fmt.Errorf("redis not OK: %s", line)
}

// readBulk reads a bulk string body announced by header ("$<len>").
// A nil bulk ("$-1") yields "".
func readBulk(r *bufio.Reader, header string) (string, error) {
	if len(header) == 0 || header[0] != '$' {
		return "", fmt.Errorf("expected bulk string, got: %s", header)
	}
	n, err := strconv.Atoi(header[1:])
	if err != nil {
		return "", fmt.Errorf("bad bulk length: %s", header)
	}
	if n < 0 {
		return "", nil
	}
	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", ioEOF
	}
	return string(buf[:n]), nil
}

// readBRPOP returns the popped key and payload. Both are empty when BRPOP
// timed out.
func readBRPOP(rw *bufio.ReadWriter) (key string, payload string, err error) {
	line, err := readLine(rw.Reader)
	if err != nil {
		return "", "", err
	}
	if len(line) == 0 {
		return "", "", fmt.Errorf("empty reply")
	}
	switch line[0] {
	case '*':
		n, err := strconv.Atoi(line[1:])
		if err != nil {
			return "", "", fmt.Errorf("bad array length: %s", line)
		}
		if n <= 0 {
			return "", "", nil
		}
		if n != 2 {
			return "", "", fmt.Errorf("unexpected BRPOP reply size %d", n)
		}
		header, err := readLine(rw.Reader)
		if err != nil {
			return "", "", err
		}
		if key, err = readBulk(rw.Reader, header); err != nil {
			return "", "", err
		}
		if header, err = readLine(rw.Reader); err != nil {
			return "", "", err
		}
		if payload, err = readBulk(rw.Reader, header); err != nil {
			return "", "", err
		}
		return key, payload, nil
	case '$':
		payload, err := readBulk(rw.Reader, line)
		return "", payload, err
	case '-':
		return "", "", fmt.Errorf("redis error: %s", line)
	default:
		return "", "", fmt.Errorf("unexpected reply: %s", line)
	}
}
