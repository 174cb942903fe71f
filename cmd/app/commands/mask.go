package commands

import (
	"fmt"
	"io"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
)

// RunMask prints value masked the way the API and logs mask PII. Only the last visibleChars
// characters stay readable; a negative count uses the default of four.
func RunMask(cipher cryptoService.SecretCipher, writer io.Writer, value string, visibleChars int) error {
	if value == "" {
		return fmt.Errorf("value is required")
	}

	if visibleChars < 0 {
		_, _ = fmt.Fprintln(writer, cipher.MaskDefault(value))
		return nil
	}

	_, _ = fmt.Fprintln(writer, cipher.Mask(value, visibleChars))
	return nil
}
