package predictor

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/derekparker/trie"
	"github.com/sugawarayuuta/sonnet"
)

// MaxIndexBits bounds K, M1 and M2. Indices are computed on 64-bit addresses
// shifted right by two, so 32 index bits always fit without overflow.
const MaxIndexBits = 32

var (
	// ErrUnknownVariant is returned for a predictor name that is not one of
	// bimodal, gshare or hybrid.
	ErrUnknownVariant = errors.New("unknown branch predictor")
	// ErrHistoryTooLong is returned when N exceeds M1.
	ErrHistoryTooLong = errors.New("global history longer than gshare index")
	// ErrIndexTooWide is returned when a table index exceeds MaxIndexBits.
	ErrIndexTooWide = errors.New("table index too wide")
)

// Variant selects the predictor design.
type Variant uint8

const (
	Bimodal Variant = iota + 1
	Gshare
	Hybrid
)

var variantNames = map[Variant]string{
	Bimodal: "bimodal",
	Gshare:  "gshare",
	Hybrid:  "hybrid",
}

var variantRegistry = func() *trie.Trie {
	t := trie.New()
	for v, name := range variantNames {
		t.Add(name, v)
	}
	return t
}()

// String returns the command-line name of the variant.
func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

// ParseVariant resolves a predictor name. Names must match exactly; when the
// name is a prefix of known names they are offered in the error.
func ParseVariant(name string) (Variant, error) {
	if node, ok := variantRegistry.Find(name); ok {
		return node.Meta().(Variant), nil
	}

	candidates := []string{}
	if name != "" {
		candidates = variantRegistry.PrefixSearch(name)
	}
	if len(candidates) > 0 {
		sort.Strings(candidates)
		return 0, fmt.Errorf("%w: %q (did you mean %s?)",
			ErrUnknownVariant, name, strings.Join(candidates, " or "))
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	if _, ok := variantNames[v]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, uint8(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UsesBimodal reports whether the variant owns a bimodal table.
func (v Variant) UsesBimodal() bool { return v == Bimodal || v == Hybrid }

// UsesGshare reports whether the variant owns a gshare table and history.
func (v Variant) UsesGshare() bool { return v == Gshare || v == Hybrid }

// UsesChooser reports whether the variant owns a chooser table.
func (v Variant) UsesChooser() bool { return v == Hybrid }

// Config holds the predictor selection and its table widths.
// A table with width W has exactly 2^W counters.
type Config struct {
	// Variant is the predictor design.
	Variant Variant `json:"predictor"`

	// K is the number of PC bits indexing the chooser table (hybrid).
	K uint `json:"k,omitempty"`

	// M1 is the number of PC bits indexing the gshare table (gshare, hybrid).
	M1 uint `json:"m1,omitempty"`

	// N is the number of global history bits folded into the gshare index.
	// Must not exceed M1.
	N uint `json:"n,omitempty"`

	// M2 is the number of PC bits indexing the bimodal table (bimodal, hybrid).
	M2 uint `json:"m2,omitempty"`
}

// DefaultConfig returns a hybrid configuration with mid-sized tables.
func DefaultConfig() Config {
	return Config{
		Variant: Hybrid,
		K:       8,
		M1:      14,
		N:       10,
		M2:      13,
	}
}

// BimodalConfig returns a bimodal configuration with 2^m2 counters.
func BimodalConfig(m2 uint) Config {
	return Config{Variant: Bimodal, M2: m2}
}

// GshareConfig returns a gshare configuration with 2^m1 counters and n
// history bits.
func GshareConfig(m1, n uint) Config {
	return Config{Variant: Gshare, M1: m1, N: n}
}

// HybridConfig returns a hybrid configuration.
func HybridConfig(k, m1, n, m2 uint) Config {
	return Config{Variant: Hybrid, K: k, M1: m1, N: n, M2: m2}
}

// Params returns the integer parameters the variant takes on the command
// line, in command-line order.
func (c Config) Params() []uint {
	switch c.Variant {
	case Bimodal:
		return []uint{c.M2}
	case Gshare:
		return []uint{c.M1, c.N}
	case Hybrid:
		return []uint{c.K, c.M1, c.N, c.M2}
	}
	return nil
}

// ParamCount returns how many integer parameters a variant takes.
func ParamCount(v Variant) int {
	return len(Config{Variant: v}.Params())
}

// FromParams builds a Config from command-line ordered parameters.
func FromParams(v Variant, params []uint) (Config, error) {
	want := ParamCount(v)
	if want == 0 {
		return Config{}, fmt.Errorf("%w: %v", ErrUnknownVariant, v)
	}
	if len(params) != want {
		return Config{}, fmt.Errorf("%s takes %d parameters, got %d", v, want, len(params))
	}

	switch v {
	case Bimodal:
		return BimodalConfig(params[0]), nil
	case Gshare:
		return GshareConfig(params[0], params[1]), nil
	default:
		return HybridConfig(params[0], params[1], params[2], params[3]), nil
	}
}

// Validate checks the configuration against the table-width constraints of
// its variant.
func (c Config) Validate() error {
	if _, ok := variantNames[c.Variant]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownVariant, c.Variant)
	}
	if c.Variant.UsesChooser() && c.K > MaxIndexBits {
		return fmt.Errorf("%w: k=%d exceeds %d", ErrIndexTooWide, c.K, MaxIndexBits)
	}
	if c.Variant.UsesGshare() {
		if c.M1 > MaxIndexBits {
			return fmt.Errorf("%w: m1=%d exceeds %d", ErrIndexTooWide, c.M1, MaxIndexBits)
		}
		if c.N > c.M1 {
			return fmt.Errorf("%w: n=%d > m1=%d", ErrHistoryTooLong, c.N, c.M1)
		}
	}
	if c.Variant.UsesBimodal() && c.M2 > MaxIndexBits {
		return fmt.Errorf("%w: m2=%d exceeds %d", ErrIndexTooWide, c.M2, MaxIndexBits)
	}
	return nil
}

// LoadConfig loads a Config from a JSON file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read predictor config file: %w", err)
	}

	var config Config
	if err := sonnet.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse predictor config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := sonnet.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize predictor config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write predictor config file: %w", err)
	}

	return nil
}
