// Package chatcmder provides the chat command for conversing with the
// assistant over the stored knowledge.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quietmindco/engram/cmd/engram/dbpath"
	"github.com/quietmindco/engram/cmd/engram/llmconf"
	"github.com/quietmindco/engram/pkg/bundle"
	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/config"
	"github.com/quietmindco/engram/pkg/dotdir"
	"github.com/quietmindco/engram/pkg/llm"
	"github.com/quietmindco/engram/pkg/logger"
	"github.com/quietmindco/engram/pkg/memory"
	"github.com/quietmindco/engram/pkg/memory/hybrid"
	memoryutils "github.com/quietmindco/engram/pkg/memory/utils"
	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqlite"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

const chatSystem = "You are a thoughtful personal assistant with long-term memory. " +
	"Use the provided context when it is relevant; never invent facts about the user."

const chatLongDesc string = `Start an interactive chat session with memory.

Each turn, relevant stored facts, active goals, and past-conversation
excerpts are assembled into the model's context. Messages like
"remember that ..." store a fact directly without a model call. The
transcript is written to .engram/session.json after every turn so an
interrupted session resumes where it left off, and is saved as a
conversation when the session ends.

Examples:
  engram chat
  engram chat --fresh`

const chatShortDesc string = "Interactive chat with memory"

type chatCommander struct {
	sqlitePath string
	fresh      bool
	debug      bool

	configDir string
	cfg       *config.Config
	logger    *zap.Logger
	assembler *bundle.Assembler
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cmder.configDir = configDir

			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg, err = cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database")
	cmd.Flags().BoolVar(&cmder.fresh, "fresh", false, "Discard any pending session and start a new conversation")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()
	c.assembler = bundle.NewAssembler(bundle.Budget{})

	path, err := dbpath.ResolveOrInit(c.sqlitePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	engine := memoryutils.NewEngine(&memoryutils.NewEngineOpts{
		Store:             store,
		Enabled:           c.cfg.Memory.Enabled,
		VectorProvider:    c.cfg.VectorStore.Provider,
		VectorTarget:      c.cfg.VectorStore.Target,
		EmbeddingProvider: c.cfg.Embedding.Provider,
		EmbeddingTarget:   c.cfg.Embedding.Target,
		EmbeddingModel:    c.cfg.Embedding.Model,
		Dimensions:        c.cfg.Embedding.Dimensions,
		Logger:            c.logger,
	})
	defer engine.Close()

	stream, err := completion.NewStreamer(llmconf.Completion(c.cfg, c.configDir))
	if err != nil {
		return fmt.Errorf("no completion backend configured: %w", err)
	}

	manager := dotdir.NewManager()
	state, err := c.loadSession(manager)
	if err != nil {
		return err
	}

	transcript := make([]llm.Message, 0, len(state.Messages))
	for _, msg := range state.Messages {
		transcript = append(transcript, llm.NewTextMessage(msg.Role, msg.Content))
	}

	fmt.Println()
	if len(transcript) > 0 {
		fmt.Printf("  %s Resuming session %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(transcript))),
		)
	} else {
		fmt.Printf("  %s New conversation\n", cliui.DimStyle.Render("●"))
	}
	if c.cfg.Memory.Enabled && engine.Mode() == memory.ModeExactOnly {
		fmt.Printf("  %s Vector index unavailable; recall runs on exact matches only.\n",
			cliui.WarnStyle.Render("!"))
	}
	fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		// Capture triggers store directly; no model round trip.
		if entity, text, ok := bundle.MatchCapture(input); ok {
			if err := c.capture(ctx, engine, entity, text); err != nil {
				return err
			}
			continue
		}

		transcript = append(transcript, llm.NewTextMessage("user", input))

		reply, err := c.turn(ctx, store, engine, stream, transcript, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			if errors.Is(err, storage.ErrPersistence) {
				return err
			}
			// The completion failed; drop the user message so it can be
			// retried against a freshly assembled context.
			transcript = transcript[:len(transcript)-1]
			continue
		}

		transcript = append(transcript, llm.NewTextMessage("assistant", reply))

		if err := c.saveSession(manager, state, transcript); err != nil {
			return err
		}

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return c.finish(ctx, store, manager, transcript)
}

// turn assembles the context bundle for one exchange and streams the reply.
func (c *chatCommander) turn(ctx context.Context, store storage.Driver, engine memory.Driver, stream completion.StreamFunc, transcript []llm.Message, input string) (string, error) {
	result, err := engine.Recall(ctx, input, 15)
	if err != nil {
		return "", err
	}

	goals, err := store.ActiveGoals(ctx, 5)
	if err != nil {
		return "", err
	}

	past, err := store.RecentConversations(ctx, 2)
	if err != nil {
		return "", err
	}

	b := c.assembler.Assemble(result.Facts, goals, past, transcript)

	system := chatSystem
	if rendered := b.Render(); rendered != "" {
		system += "\n\n" + rendered
	}

	fmt.Print(assistantPrompt)
	resp, err := stream(ctx, system, b.Transcript, func(delta string) {
		fmt.Print(delta)
	})
	if err != nil {
		fmt.Println()
		return "", err
	}

	return resp.Message.GetText(), nil
}

func (c *chatCommander) capture(ctx context.Context, engine *hybrid.Engine, entity, text string) error {
	fact, err := engine.Store(ctx, entity, text)
	if err != nil {
		return err
	}
	_ = engine.Index(ctx, fact)

	fmt.Printf("  %s Remembered %s %s\n\n",
		cliui.SuccessMark,
		cliui.EntityStyle.Render(entity),
		cliui.DimStyle.Render(fmt.Sprintf("(fact %d)", fact.ID)),
	)
	return nil
}

func (c *chatCommander) loadSession(manager *dotdir.Manager) (*dotdir.SessionState, error) {
	if c.fresh {
		if err := manager.ClearSession(""); err != nil {
			return nil, fmt.Errorf("clearing session: %w", err)
		}
		return &dotdir.SessionState{StartedAt: time.Now()}, nil
	}

	state, err := manager.LoadSessionState("")
	if err != nil {
		return nil, fmt.Errorf("loading session state: %w", err)
	}
	if state == nil {
		state = &dotdir.SessionState{StartedAt: time.Now()}
	}
	return state, nil
}

// saveSession persists the transcript after every turn so an interrupted
// session loses nothing.
func (c *chatCommander) saveSession(manager *dotdir.Manager, state *dotdir.SessionState, transcript []llm.Message) error {
	state.Messages = state.Messages[:0]
	for i := range transcript {
		state.Messages = append(state.Messages, dotdir.SessionMessage{
			Role:    transcript[i].Role,
			Content: transcript[i].GetText(),
		})
	}
	if state.Topic == "" {
		state.Topic = bundle.ExtractTopic(transcript)
	}

	if err := manager.SaveSession(state, ""); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// finish saves the transcript as a conversation and clears the pending
// session.
func (c *chatCommander) finish(ctx context.Context, store storage.Driver, manager *dotdir.Manager, transcript []llm.Message) error {
	if len(transcript) == 0 {
		return nil
	}

	conv := &storage.Conversation{
		ID:         uuid.NewString(),
		Topic:      bundle.ExtractTopic(transcript),
		Transcript: transcript,
		CreatedAt:  time.Now(),
	}

	if err := store.SaveConversation(ctx, conv); err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}

	if err := manager.ClearSession(""); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	fmt.Printf("  %s Saved conversation %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(conv.Topic),
	)
	return nil
}
