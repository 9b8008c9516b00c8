// Package importer replays archived conversation logs into the store. The
// legacy assistant wrote one formatted text file per conversation under
// dated folders; importing parses those logs back into transcripts.
package importer

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quietmindco/engram/pkg/llm"
)

const (
	logHeader = "PERSONAL OS CONVERSATION LOG"
	logFooter = "END OF CONVERSATION"

	userMarker      = "YOU:"
	assistantMarker = "CLAUDE:"
)

// ArchivedConversation is one parsed conversation log.
type ArchivedConversation struct {
	ID         string
	Topic      string
	OccurredAt time.Time
	Messages   []llm.Message
}

// ScanArchiveDir finds conversation logs under the given directory.
func ScanArchiveDir(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".txt") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// ParseLog reads one conversation log. Files without the log header or with
// no readable messages are errors so the importer can count them.
func ParseLog(path string) (*ArchivedConversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conv := &ArchivedConversation{ID: logID(path)}

	var (
		sawHeader bool
		dateLine  string
		timeLine  string
		role      string
		content   []string
	)

	flush := func() {
		if role == "" {
			return
		}
		if text := strings.TrimSpace(strings.Join(content, "\n")); text != "" {
			conv.Messages = append(conv.Messages, llm.NewTextMessage(role, text))
		}
		role = ""
		content = content[:0]
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == logHeader:
			sawHeader = true
			continue
		case trimmed == logFooter:
			flush()
			continue
		case strings.HasPrefix(trimmed, "Date: "):
			dateLine = strings.TrimPrefix(trimmed, "Date: ")
			continue
		case strings.HasPrefix(trimmed, "Time: "):
			timeLine = strings.TrimPrefix(trimmed, "Time: ")
			continue
		case strings.HasPrefix(trimmed, "Topic: "):
			conv.Topic = strings.TrimPrefix(trimmed, "Topic: ")
			continue
		case separatorLine(trimmed, '='):
			continue
		case separatorLine(trimmed, '-'):
			flush()
			continue
		case trimmed == userMarker:
			flush()
			role = "user"
			continue
		case trimmed == assistantMarker:
			flush()
			role = "assistant"
			continue
		}

		if role != "" {
			content = append(content, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	if !sawHeader {
		return nil, errors.New("not a conversation log")
	}
	if len(conv.Messages) == 0 {
		return nil, errors.New("no messages")
	}

	conv.OccurredAt = parseLogTime(dateLine, timeLine, path)
	if conv.Topic == "" {
		conv.Topic = "general"
	}

	return conv, nil
}

// logID derives a stable conversation id from the archive layout, so the
// same file imports once no matter how often the importer runs.
func logID(path string) string {
	day := filepath.Base(filepath.Dir(path))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return "conv_" + day + "_" + name
}

// parseLogTime rebuilds the conversation time from the header lines, falling
// back to the dated folder and the HHMMSS filename prefix.
func parseLogTime(dateLine, timeLine, path string) time.Time {
	if dateLine != "" && timeLine != "" {
		if t, err := time.Parse("Monday, January 2, 2006 15:04:05", dateLine+" "+timeLine); err == nil {
			return t
		}
	}

	day := filepath.Base(filepath.Dir(path))
	name := filepath.Base(path)
	if len(name) >= 6 {
		if t, err := time.Parse("2006-01-02 150405", day+" "+name[:6]); err == nil {
			return t
		}
	}
	if t, err := time.Parse("2006-01-02", day); err == nil {
		return t
	}

	return time.Time{}
}

// separatorLine reports whether the line is a run of the given byte, the
// section break style the legacy logs used.
func separatorLine(line string, sep byte) bool {
	if len(line) < 3 {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != sep {
			return false
		}
	}
	return true
}
