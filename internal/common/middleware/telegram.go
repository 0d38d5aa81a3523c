package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"geev-escrow/internal/common/errors"
)

const InitDataHeader = "init_data"

// TelegramInitData rejects requests that do not carry init data signed for
// botToken. A zero ttl disables the expiration check.
func TelegramInitData(botToken string, ttl time.Duration, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		initDataQuery := c.GetHeader(InitDataHeader)
		if initDataQuery == "" {
			sendErrorResponse(c, errors.NewUnauthorizedError("Telegram init data required"), logger)
			c.Abort()
			return
		}

		if err := initdata.Validate(initDataQuery, botToken, ttl); err != nil {
			sendErrorResponse(c, errors.Wrap(err, errors.ErrCodeUnauthorized, "Invalid init data"), logger)
			c.Abort()
			return
		}

		parsedData, err := initdata.Parse(initDataQuery)
		if err != nil {
			sendErrorResponse(c, errors.Wrap(err, errors.ErrCodeValidation, "Failed to parse init data"), logger)
			c.Abort()
			return
		}

		logger.Debug().Int64("telegram_user_id", parsedData.User.ID).Msg("Init data validated")
		c.Set("telegram_user", parsedData.User)
		c.Next()
	}
}
