// talk client - chat-client core for the talk backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/moderato-app/talk-client/internal/ability"
	"github.com/moderato-app/talk-client/internal/api"
	"github.com/moderato-app/talk-client/internal/blob"
	"github.com/moderato-app/talk-client/internal/config"
	"github.com/moderato-app/talk-client/internal/pipeline"
	"github.com/moderato-app/talk-client/internal/store"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Server.URL == "" {
		return fmt.Errorf("no server configured: set server.url in the config file or TALK_SERVER_URL")
	}

	blobPath, err := cfg.ResolveBlobDBPath()
	if err != nil {
		return err
	}
	blobs, err := blob.Open(blobPath)
	if err != nil {
		return err
	}
	defer blobs.Close()

	chats := store.NewChatStore(blobs)
	chats.SetDefaultOption(defaultOptionFor(cfg))
	prompts := store.NewPromptStore()

	client := api.NewClient(cfg.Server.URL).
		WithAPIKey(cfg.Server.APIKey).
		WithTimeout(cfg.RequestTimeout())

	sender := pipeline.New(chats, prompts, client, blobs, cfg.MinSpeakTime())
	sender.Start()
	defer sender.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Capability pushes flow straight into the chat store, which reconciles
	// every chat's option against each snapshot.
	stream := api.NewAbilityStream(client, cfg.SSERetryInterval(), chats.ApplyAbility)
	go stream.Run(ctx)

	// Reload config changes at runtime. The recording guard and the seed
	// for new chats can be swapped in place; endpoint and credential
	// changes still need a restart.
	cfgPath, err := config.ConfigPath()
	if err == nil {
		watcher, werr := config.Watch(cfgPath, func(next *config.Config) {
			sender.SetMinSpeakTime(next.MinSpeakTime())
			chats.SetDefaultOption(defaultOptionFor(next))
			log.Printf("config change applied, min speak time now %v", next.MinSpeakTime())
		})
		if werr != nil {
			log.Printf("WARNING: config watching disabled: %v", werr)
		} else {
			defer watcher.Close()
		}
	}

	log.Printf("talk client %s connected to %s", Version, cfg.Server.URL)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Printf("shutting down")
	return nil
}

// defaultOptionFor builds the option seed for new chats from configured
// settings.
func defaultOptionFor(cfg *config.Config) ability.Option {
	opt := ability.DefaultOption()
	opt.LLM.MaxHistory = cfg.Chat.MaxHistory
	return opt
}
