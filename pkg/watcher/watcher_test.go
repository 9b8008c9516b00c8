package watcher_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quietmindco/engram/pkg/completion"
	"github.com/quietmindco/engram/pkg/watcher"
)

type recordedFact struct {
	Entity string
	Text   string
}

type recordingSink struct {
	mu    sync.Mutex
	facts []recordedFact
}

func (s *recordingSink) StoreFact(_ context.Context, entity, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = append(s.facts, recordedFact{Entity: entity, Text: text})
	return nil
}

func (s *recordingSink) Facts() []recordedFact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedFact(nil), s.facts...)
}

var _ = Describe("Watcher", func() {
	var (
		notesDir string
		sink     *recordingSink
	)

	BeforeEach(func() {
		notesDir = filepath.Join(GinkgoT().TempDir(), "notes")
		sink = &recordingSink{}
	})

	newWatcher := func(call completion.CallFunc) *watcher.Watcher {
		w, err := watcher.New(watcher.Config{
			Dir:    notesDir,
			Sink:   sink,
			Call:   call,
			Settle: 50 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())
		return w
	}

	run := func(w *watcher.Watcher) (context.CancelFunc, chan error) {
		ctx, cancel := context.WithCancel(context.Background())
		errChan := make(chan error, 1)
		go func() {
			errChan <- w.Run(ctx)
		}()

		// Let the directory watch arm before dropping files.
		time.Sleep(50 * time.Millisecond)
		return cancel, errChan
	}

	stop := func(cancel context.CancelFunc, errChan chan error) {
		cancel()
		Eventually(errChan, 2*time.Second, 50*time.Millisecond).Should(Receive(MatchError(context.Canceled)))
	}

	It("requires a directory and a sink", func() {
		_, err := watcher.New(watcher.Config{Sink: sink})
		Expect(err).To(MatchError("no notes directory configured"))

		_, err = watcher.New(watcher.Config{Dir: notesDir})
		Expect(err).To(MatchError("no sink configured"))
	})

	It("creates the notes directory on start", func() {
		cancel, errChan := run(newWatcher(nil))
		Eventually(notesDir, 2*time.Second, 50*time.Millisecond).Should(BeADirectory())
		stop(cancel, errChan)
	})

	It("stores a dropped note under the notes entity, prefixed with its filename", func() {
		cancel, errChan := run(newWatcher(nil))

		notePath := filepath.Join(notesDir, "ideas.md")
		Expect(os.WriteFile(notePath, []byte("switch the importer to streaming json\n"), 0o600)).To(Succeed())

		Eventually(sink.Facts, 2*time.Second, 50*time.Millisecond).Should(HaveLen(1))
		fact := sink.Facts()[0]
		Expect(fact.Entity).To(Equal(watcher.NotesEntity))
		Expect(fact.Text).To(Equal("ideas.md: switch the importer to streaming json"))

		stop(cancel, errChan)
	})

	It("summarizes note content through the completion backend", func() {
		var (
			mu     sync.Mutex
			prompt string
		)
		call := func(_ context.Context, _, p string) (string, error) {
			mu.Lock()
			prompt = p
			mu.Unlock()
			return "A note about streaming imports.\n", nil
		}

		cancel, errChan := run(newWatcher(call))

		notePath := filepath.Join(notesDir, "ideas.md")
		Expect(os.WriteFile(notePath, []byte("lots of detail about streaming imports"), 0o600)).To(Succeed())

		Eventually(sink.Facts, 2*time.Second, 50*time.Millisecond).Should(HaveLen(1))
		Expect(sink.Facts()[0].Text).To(Equal("ideas.md: A note about streaming imports."))

		mu.Lock()
		defer mu.Unlock()
		Expect(prompt).To(ContainSubstring("Summarize this file (ideas.md)"))
		Expect(prompt).To(ContainSubstring("lots of detail about streaming imports"))

		stop(cancel, errChan)
	})

	It("falls back to the head of the file when the call fails", func() {
		call := func(_ context.Context, _, _ string) (string, error) {
			return "", errors.New("backend down")
		}

		cancel, errChan := run(newWatcher(call))

		long := strings.Repeat("a", 400)
		Expect(os.WriteFile(filepath.Join(notesDir, "long.txt"), []byte(long), 0o600)).To(Succeed())

		Eventually(sink.Facts, 2*time.Second, 50*time.Millisecond).Should(HaveLen(1))
		Expect(sink.Facts()[0].Text).To(Equal("long.txt: " + strings.Repeat("a", 300)))

		stop(cancel, errChan)
	})

	It("ignores files that are not notes", func() {
		cancel, errChan := run(newWatcher(nil))

		Expect(os.WriteFile(filepath.Join(notesDir, "photo.png"), []byte{0x89, 0x50}, 0o600)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(notesDir, "real.md"), []byte("a real note"), 0o600)).To(Succeed())

		Eventually(sink.Facts, 2*time.Second, 50*time.Millisecond).Should(HaveLen(1))
		Expect(sink.Facts()[0].Text).To(Equal("real.md: a real note"))

		stop(cancel, errChan)
	})

	It("skips empty notes", func() {
		cancel, errChan := run(newWatcher(nil))

		Expect(os.WriteFile(filepath.Join(notesDir, "blank.md"), []byte("   \n\n"), 0o600)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(notesDir, "follow.md"), []byte("still listening"), 0o600)).To(Succeed())

		Eventually(sink.Facts, 2*time.Second, 50*time.Millisecond).Should(HaveLen(1))
		Expect(sink.Facts()[0].Text).To(Equal("follow.md: still listening"))

		stop(cancel, errChan)
	})

	It("collapses a write burst into one stored fact", func() {
		cancel, errChan := run(newWatcher(nil))

		notePath := filepath.Join(notesDir, "draft.md")
		for range 3 {
			Expect(os.WriteFile(notePath, []byte("draft in progress"), 0o600)).To(Succeed())
			time.Sleep(10 * time.Millisecond)
		}

		Eventually(sink.Facts, 2*time.Second, 50*time.Millisecond).Should(HaveLen(1))
		Consistently(sink.Facts, 300*time.Millisecond, 50*time.Millisecond).Should(HaveLen(1))

		stop(cancel, errChan)
	})
})
