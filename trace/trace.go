// Package trace reads branch traces for bpsim.
//
// A trace is a text file with one retired branch per line: the branch
// address in hexadecimal followed by its outcome, "t" for taken or "n" for
// not taken.
//
//	00a3b5fc t
//	00a3b604 n
package trace

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/crypto/sha3"

	"github.com/sarchlab/bpsim/predictor"
)

// tracer writes to trace with key 'bpsim.trace'
func tracer() tracing.Trace {
	return tracing.Select("bpsim.trace")
}

// Record is a single retired branch.
type Record struct {
	Address uint64
	Outcome predictor.Outcome
}

// String formats the record as a trace line.
func (r Record) String() string {
	return fmt.Sprintf("%x %s", r.Address, r.Outcome)
}

// ParseError describes a malformed trace line.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Reader parses trace records and hashes the bytes it consumes.
type Reader struct {
	scanner *bufio.Scanner
	digest  hash.Hash
	line    int
	records int
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	digest := sha3.New256()
	return &Reader{
		scanner: bufio.NewScanner(io.TeeReader(r, digest)),
		digest:  digest,
	}
}

// Next returns the next record. It returns io.EOF once the input is
// exhausted and a *ParseError for a malformed line.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}

		rec, err := parseLine(text)
		if err != nil {
			err.Line = r.line
			tracer().Errorf("%v", err)
			return Record{}, err
		}

		r.records++
		return rec, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("failed to read trace: %w", err)
	}

	tracer().Infof("trace: %d records in %d lines", r.records, r.line)
	return Record{}, io.EOF
}

func parseLine(text string) (Record, *ParseError) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Record{}, &ParseError{Text: text, Reason: "expected address and outcome"}
	}

	addrText := strings.TrimPrefix(strings.ToLower(fields[0]), "0x")
	addr, err := strconv.ParseUint(addrText, 16, 64)
	if err != nil {
		return Record{}, &ParseError{Text: text, Reason: "bad hex address"}
	}

	outcome, ok := predictor.ParseOutcome(fields[1])
	if !ok {
		return Record{}, &ParseError{Text: text, Reason: "unknown outcome"}
	}

	return Record{Address: addr, Outcome: outcome}, nil
}

// Records returns the number of records read so far.
func (r *Reader) Records() int {
	return r.records
}

// Digest returns the hex SHA3-256 of the bytes consumed so far. After Next
// has returned io.EOF it identifies the whole trace.
func (r *Reader) Digest() string {
	return hex.EncodeToString(r.digest.Sum(nil))
}

// ReadAll reads every record from r.
func ReadAll(r io.Reader) ([]Record, error) {
	reader := NewReader(r)

	var records []Record
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// Replay feeds every record from r through the engine in trace order. It
// stops at the first malformed record.
func Replay(e *predictor.Engine, r *Reader) error {
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		e.PredictAndUpdate(rec.Address, rec.Outcome)
	}
}

// ReplayFile opens path, replays it through the engine and returns the
// trace digest.
func ReplayFile(e *predictor.Engine, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("unable to open trace file: %w", err)
	}
	defer f.Close()

	r := NewReader(f)
	if err := Replay(e, r); err != nil {
		return "", err
	}
	return r.Digest(), nil
}

// Write writes records in trace format.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintln(bw, rec.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
