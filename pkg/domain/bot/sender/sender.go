package sender

import (
	"math"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/julianails/tg_booking_bot/pkg/utils/errs"
	"github.com/rs/zerolog"
)

// Processor delivers outbound notifications (booking confirmations,
// reminders) with a small retry budget. Delivery is best effort: the
// caller gets an error after the retries are spent, nothing is queued.
type Processor struct {
	logger zerolog.Logger
	bot    *tgbotapi.BotAPI
}

func New(logger zerolog.Logger, bot *tgbotapi.BotAPI) *Processor {
	return &Processor{
		logger: logger.With().Str("component", "sender").Logger(),
		bot:    bot,
	}
}

// Send pushes an HTML-formatted message to a chat, retrying up to
// three times with exponential backoff.
func (p *Processor) Send(chatID int64, text string) (int, error) {
	msgToSend := tgbotapi.NewMessage(chatID, text)
	msgToSend.ParseMode = tgbotapi.ModeHTML

	var err error
	var msg tgbotapi.Message

	for i := 0; i < 3; i++ {
		if i != 0 {
			time.Sleep(time.Duration(math.Pow(2, float64(i))) * time.Second)
		}
		msg, err = p.bot.Send(msgToSend)
		if err == nil {
			return msg.MessageID, nil
		}
		p.logger.Warn().Err(err).Int64("chat_id", chatID).Int("retry", i+1).Msg("send failed, retrying")
	}
	p.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send permanently failed")

	return 0, errs.New("failed to send message").Arg("chat_id", chatID).Wrap(err)
}
