package notification

import (
	"context"
	"log/slog"
	"sort"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
)

// LogSender logs messages instead of delivering them. Data values are never logged since
// they carry secrets such as reset tokens and claim codes.
type LogSender struct {
	cipher cryptoService.SecretCipher
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(cipher cryptoService.SecretCipher, logger *slog.Logger) *LogSender {
	return &LogSender{cipher: cipher, logger: logger}
}

// Send logs the masked recipient, the template and the data keys.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	keys := make([]string, 0, len(msg.Data))
	for k := range msg.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.logger.InfoContext(ctx, "notification sent",
		slog.String("to", s.cipher.MaskDefault(msg.To)),
		slog.String("template", msg.Template),
		slog.Any("data_keys", keys),
	)
	return nil
}
