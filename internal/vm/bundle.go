package vm

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/funvibe/envx/internal/config"
)

// Bundle is a compiled program persisted to disk. It carries enough
// metadata to report where the code came from.
type Bundle struct {
	ID         string    `cbor:"1,keyasint"`
	SourceFile string    `cbor:"2,keyasint"`
	Env        string    `cbor:"3,keyasint"`
	Code       []byte    `cbor:"4,keyasint"`
	CreatedAt  time.Time `cbor:"5,keyasint"`
}

var bundleEncMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// NewBundle wraps compiled code with a fresh ID and timestamp.
func NewBundle(sourceFile, env string, code []byte) *Bundle {
	return &Bundle{
		ID:         uuid.NewString(),
		SourceFile: sourceFile,
		Env:        env,
		Code:       code,
		CreatedAt:  time.Now().UTC(),
	}
}

// Serialize encodes the bundle as magic + version + canonical CBOR.
func (b *Bundle) Serialize() ([]byte, error) {
	payload, err := bundleEncMode.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(config.BundleMagic)
	buf.WriteByte(config.BundleVersion)
	buf.Write(payload)
	return buf.Bytes(), nil
}

// DeserializeBundle validates the header and decodes the payload.
func DeserializeBundle(data []byte) (*Bundle, error) {
	header := len(config.BundleMagic) + 1
	if len(data) < header || string(data[:len(config.BundleMagic)]) != config.BundleMagic {
		return nil, fmt.Errorf("not an envx bundle")
	}
	if v := data[len(config.BundleMagic)]; v != config.BundleVersion {
		return nil, fmt.Errorf("unsupported bundle version %d (want %d)", v, config.BundleVersion)
	}
	b := &Bundle{}
	if err := cbor.Unmarshal(data[header:], b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if len(b.Code) == 0 {
		return nil, fmt.Errorf("bundle %s has no code", b.ID)
	}
	return b, nil
}

// IsBundle reports whether data starts with the bundle magic.
func IsBundle(data []byte) bool {
	return bytes.HasPrefix(data, []byte(config.BundleMagic))
}

// RunBundle executes a bundle on a fresh VM writing println output to out.
func RunBundle(b *Bundle, out io.Writer) (*VM, error) {
	machine := New()
	if out != nil {
		machine.SetOutput(out)
	}
	log.Debugf("bundle %s: env=%s source=%s", b.ID, b.Env, b.SourceFile)
	if err := machine.Run(b.Code); err != nil {
		return nil, err
	}
	return machine, nil
}
