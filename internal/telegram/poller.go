package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dayline/dayline/internal/domain"
	"github.com/dayline/dayline/internal/service"
	"go.uber.org/zap"
)

// sendTimeout bounds one outbound API call.
const sendTimeout = 10 * time.Second

// Poller runs the getUpdates loop and dispatches each message to the flow
// service. One update is handled at a time; a panic in a handler is recovered
// and the loop keeps going.
type Poller struct {
	client *Client
	flow   *service.FlowService
	logger *zap.Logger

	offset int64
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewPoller(client *Client, flow *service.FlowService, logger *zap.Logger) *Poller {
	return &Poller{
		client: client,
		flow:   flow,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

func (p *Poller) Start() {
	p.wg.Add(1)
	go p.run()
	p.logger.Info("telegram poller started")
}

func (p *Poller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	p.logger.Info("telegram poller stopped")
}

func (p *Poller) run() {
	defer p.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-p.stopCh
		cancel()
	}()

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		updates, err := p.client.GetUpdates(ctx, p.offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("getUpdates failed, backing off", zap.Error(err))
			select {
			case <-p.stopCh:
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			p.offset = update.UpdateID + 1
			p.handle(update)
		}
	}
}

func (p *Poller) handle(update Update) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("panic handling update",
				zap.Int64("update_id", update.UpdateID),
				zap.Any("panic", rec))
		}
	}()

	msg := update.Message
	if msg == nil || msg.Chat.Type != "private" {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	chatID := msg.Chat.ID
	reply := p.dispatch(ctx, chatID, text)
	p.deliver(ctx, chatID, reply)
}

func (p *Poller) dispatch(ctx context.Context, chatID int64, text string) service.Reply {
	if strings.HasPrefix(text, "/") {
		return p.dispatchCommand(ctx, chatID, command(text))
	}

	// Button taps arrive as their visible labels; everything else is free text.
	if token, ok := tokenFor(text); ok {
		return p.flow.OnText(ctx, chatID, domain.OptionAnswer{Token: token})
	}
	return p.flow.OnText(ctx, chatID, domain.NumericAnswer{Value: text})
}

func (p *Poller) dispatchCommand(ctx context.Context, chatID int64, cmd string) service.Reply {
	switch cmd {
	case "/start":
		return p.flow.OnStart(ctx, chatID)
	case "/today":
		return p.flow.OnToday(ctx, chatID)
	case "/stats":
		return p.flow.OnStats(ctx, chatID)
	case "/export":
		return p.flow.OnExport(ctx, chatID)
	case "/cancel":
		return p.flow.OnCancel(ctx, chatID)
	case "/help":
		return p.flow.OnHelp(ctx, chatID)
	default:
		return service.Reply{Text: "Unknown command. Use /help to see what I can do."}
	}
}

func (p *Poller) deliver(ctx context.Context, chatID int64, reply service.Reply) {
	var err error
	switch {
	case len(reply.Document) > 0:
		err = p.client.SendDocument(ctx, chatID, reply.DocumentName, reply.Document, reply.Text)
	case reply.Keyboard == service.KeyboardAggression:
		err = p.client.SendWithKeyboard(ctx, chatID, reply.Text, aggressionKeyboard)
	case reply.Keyboard == service.KeyboardMood:
		err = p.client.SendWithKeyboard(ctx, chatID, reply.Text, moodKeyboard)
	case reply.Keyboard == service.KeyboardRemove:
		err = p.client.SendRemovingKeyboard(ctx, chatID, reply.Text)
	default:
		err = p.client.SendText(ctx, chatID, reply.Text)
	}
	if err != nil {
		p.logger.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// command strips the @botname suffix Telegram appends in some clients.
func command(text string) string {
	cmd := strings.Fields(text)[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}
