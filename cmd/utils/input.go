package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/bnb-chain/evmcov/core/coverage"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// ErrArgumentCount is returned when a command gets the wrong number of
// positional arguments.
var ErrArgumentCount = errors.New("wrong number of arguments")

// InputError reports an input file that could not be read or decoded.
// Kind names the input, "bytecode" or "trace".
type InputError struct {
	Kind string
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s file %s: %v", e.Kind, e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ReadBytecode loads the bytecode stored at path. The file holds raw bytes,
// or hex text when hexInput is set; the content itself never selects the
// encoding.
func ReadBytecode(path string, hexInput bool) ([]byte, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Kind: "bytecode", Path: path, Err: errors.Wrap(err, "read")}
	}
	if !hexInput {
		return blob, nil
	}
	code, err := DecodeHex(string(blob))
	if err != nil {
		return nil, &InputError{Kind: "bytecode", Path: path, Err: errors.Wrap(err, "decode hex")}
	}
	return code, nil
}

// DecodeHex decodes hex text with or without a 0x prefix. Surrounding
// whitespace is ignored.
func DecodeHex(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X") {
		text = "0x" + text
	}
	return hexutil.Decode(text)
}

// ReadTrace loads and parses the program counter trace stored at path.
func ReadTrace(path string) ([]int64, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Kind: "trace", Path: path, Err: errors.Wrap(err, "read")}
	}
	pcs, err := coverage.ParseTrace(string(blob))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pcs, nil
}
