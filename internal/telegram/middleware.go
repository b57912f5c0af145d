package telegram

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// LearnerLookup reports which learner a Telegram user is logged in as
type LearnerLookup interface {
	LearnerName(userID int64) string
}

// RequireLearner creates middleware that stops users who have not logged in
func RequireLearner(lookup LearnerLookup, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID

			if lookup.LearnerName(userID) == "" {
				logger.Debug("Anonymous user rejected", zap.Int64("user_id", userID))
				if c.Callback() != nil {
					return c.Respond(&tele.CallbackResponse{Text: textLoginFirst, ShowAlert: true})
				}
				return c.Send(textLoginFirst)
			}

			return next(c)
		}
	}
}
