package validation

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"

	validation "github.com/jellydator/validation"
)

// HexKey accepts exactly size bytes written as hexadecimal, the format of PII_ENCRYPTION_KEY.
// Empty values pass so Required stays in charge of presence.
func HexKey(size int) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if decoded, err := hex.DecodeString(s); err != nil || len(decoded) != size {
			return validation.NewError(
				"validation_hex_key",
				"must be "+strconv.Itoa(size*2)+" hexadecimal characters",
			)
		}
		return nil
	})
}

// Base64 accepts standard base64, the format of a KMS-wrapped PII key.
var Base64 = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})
