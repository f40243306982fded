package bot

import (
	"log"
	"sync/atomic"

	"discord-role-scheduler/executor"
	"discord-role-scheduler/model"
	"discord-role-scheduler/scheduler"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Bot owns the Discord session and the scheduling engine built on it.
type Bot struct {
	Session    *discordgo.Session
	DB         *sqlx.DB
	Service    *scheduler.Service
	Dispatcher *scheduler.Dispatcher
	config     atomic.Value // *model.Config
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	dg.StateEnabled = false

	adapter := &sessionAdapter{session: dg}
	exec := executor.New(db, adapter, adapter, cfg.ExecutorWorkers)
	svc := scheduler.NewService(db, exec, adapter, scheduler.Options{
		// For bot accounts the application ID is the bot's user ID.
		SelfID:          cfg.AppID,
		BaseTargetCap:   cfg.BaseTargetCap,
		TierLookup:      tierLookup(cfg.TierCaps),
		SnapshotTimeout: cfg.SnapshotTimeout,
	})

	b := &Bot{
		Session:    dg,
		DB:         db,
		Service:    svc,
		Dispatcher: scheduler.NewDispatcher(svc, cfg.TickSpec),
	}
	b.config.Store(cfg)
	return b, nil
}

// Run opens the gateway connection and starts the dispatcher.
func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return err
	}
	log.Printf("Connected as %s", b.Session.State.User.Username)
	return b.Dispatcher.Start()
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.Dispatcher.Stop()
	b.Session.Close()
	b.DB.Close()
}

// tierLookup raises the target cap for actors listed in the config.
func tierLookup(caps map[string]int) scheduler.TierLookup {
	return func(actorID string, baseCap int) int {
		if raised, ok := caps[actorID]; ok && raised > baseCap {
			return raised
		}
		return baseCap
	}
}
