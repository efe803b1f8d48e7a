package infra

import (
	"context"
	"fmt"
	"regexp"

	"supporterboard/internal/sqlinline"
)

var channelRegexp = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// EnsureSchema creates the supporters table and its change trigger when missing.
func EnsureSchema(ctx context.Context, sql SQLExecutor, channel string) error {
	if !channelRegexp.MatchString(channel) {
		return fmt.Errorf("invalid notify channel %q", channel)
	}
	if _, err := sql.Exec(ctx, fmt.Sprintf(sqlinline.QCreateSupportersSchema, channel)); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
