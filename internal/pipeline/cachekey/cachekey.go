package cachekey

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// canonical mode sorts map keys, so equal inputs encode identically
// whatever order they were built in
var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cachekey: failed to create CBOR enc mode: %v", err))
	}

	encMode = em
}

// Compute returns the hex encoded BLAKE2b-256 digest identifying a formula
// evaluated against inputs. The formula ID, its source and its input schema
// all take part, so neither an edited formula nor a changed schema is served
// results of the old version.
func Compute(formulaID, source string, inputSchema []byte, inputs value.Map) (string, error) {
	if inputs == nil {
		inputs = value.Map{}
	}

	encodedInputs, err := value.MarshalCBOR(inputs)
	if err != nil {
		return "", fmt.Errorf("encode inputs: %w", err)
	}

	if len(bytes.TrimSpace(inputSchema)) == 0 {
		inputSchema = nil
	}

	encodedIdentity, err := encMode.Marshal([]any{formulaID, source, inputSchema})
	if err != nil {
		return "", fmt.Errorf("encode formula identity: %w", err)
	}

	hash, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("create hash: %w", err)
	}

	hash.Write(encodedIdentity)
	hash.Write(encodedInputs)

	return hex.EncodeToString(hash.Sum(nil)), nil
}
