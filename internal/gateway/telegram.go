package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nkapur/solvent/internal/governance"
	"github.com/nkapur/solvent/internal/solver"
	"github.com/nkapur/solvent/internal/store"
)

// TelegramGateway treats each inbound message as one word problem:
// policy check, solve, reply with the result JSON.
type TelegramGateway struct {
	Bot        *tgbotapi.BotAPI
	Solver     *solver.Solver
	Policy     governance.PolicyEngine
	Store      *store.SolveStore
	MaxRetries int
}

func NewTelegramGateway(token string, s *solver.Solver, policy governance.PolicyEngine, st *store.SolveStore, maxRetries int) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:        bot,
		Solver:     s,
		Policy:     policy,
		Store:      st,
		MaxRetries: maxRetries,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		ctx := context.Background()
		chatID := fmt.Sprintf("%d", update.Message.Chat.ID)

		response := tg.answer(ctx, chatID, update.Message.Text)

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, response)
		if _, err := tg.Bot.Send(msg); err != nil {
			log.Printf("Error sending reply to chat %s: %v", chatID, err)
		}
	}
	return nil
}

func (tg *TelegramGateway) answer(ctx context.Context, chatID, question string) string {
	if tg.Policy != nil {
		verdict, err := tg.Policy.Evaluate(ctx, governance.Request{Question: question, Source: chatID})
		if err != nil {
			log.Printf("Policy evaluation error: %v", err)
			return "I couldn't check that question against policy, try again."
		}
		if verdict.Effect == governance.EffectDeny {
			return "I can't take that question: " + verdict.Reason
		}
	}

	result, err := tg.Solver.Solve(ctx, question, tg.MaxRetries)
	if err != nil {
		log.Printf("Error solving: %v", err)
		return "I'm having trouble solving right now..."
	}

	if tg.Store != nil {
		if err := tg.Store.RecordSolve(chatID, question, result); err != nil {
			log.Printf("Error recording solve: %v", err)
		}
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return result.Answer
	}
	return string(pretty)
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id := 0
	fmt.Sscanf(chatID, "%d", &id)
	if id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(int64(id), text)
	msg.ParseMode = "Markdown"
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
