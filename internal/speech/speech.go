// Package speech turns the final verdict into spoken audio: the English
// text is machine-translated to the target language and voiced through a
// Google Translate style TTS endpoint.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// ErrEmptyText is returned when there is nothing to speak.
var ErrEmptyText = errors.New("empty text")

// MaxChunkLen is the longest text the TTS endpoint accepts per request.
const MaxChunkLen = 100

// Service translates and synthesizes speech.
type Service struct {
	lang         string
	translateURL string
	ttsURL       string
	client       *http.Client
	log          *logrus.Logger
}

// New creates a speech service from the speech config section.
func New(cfg config.SpeechConfig, log *logrus.Logger) *Service {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	lang := cfg.Language
	if lang == "" {
		lang = "hi"
	}
	return &Service{
		lang:         lang,
		translateURL: cfg.TranslateURL,
		ttsURL:       cfg.TTSURL,
		client:       &http.Client{Timeout: timeout},
		log:          log,
	}
}

// Language returns the target language code.
func (s *Service) Language() string { return s.lang }

// AudioPath is where the audio for company's verdict is cached under dir.
func AudioPath(dir, company, lang string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_overall_sentiment_%s.mp3", utils.Slug(company), lang))
}

// Synthesize returns MP3 audio of text spoken in the target language.
// A failed translation falls back to speaking the original text.
func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	spoken := text
	if s.lang != "en" {
		translated, err := s.Translate(ctx, text)
		if err != nil {
			s.log.WithError(err).WithField("lang", s.lang).Warn("translation failed, speaking original text")
		} else {
			spoken = translated
		}
	}

	chunks := Chunk(spoken, MaxChunkLen)
	var audio bytes.Buffer
	for i, c := range chunks {
		part, err := s.tts(ctx, c, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio.Write(part)
	}
	return audio.Bytes(), nil
}

// Translate converts English text to the target language.
func (s *Service) Translate(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "en")
	q.Set("tl", s.lang)
	q.Set("dt", "t")
	q.Set("q", text)

	body, err := s.get(ctx, s.translateURL+"?"+q.Encode())
	if err != nil {
		return "", err
	}
	return parseTranslation(body)
}

// parseTranslation reads the gtx response, a nested array whose first
// element lists [translated, original, ...] segments.
func parseTranslation(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decode translation: %w", err)
	}
	if len(raw) == 0 {
		return "", errors.New("empty translation response")
	}
	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("decode translation segments: %w", err)
	}
	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if str, ok := seg[0].(string); ok {
			sb.WriteString(str)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("translation contained no text")
	}
	return sb.String(), nil
}

func (s *Service) tts(ctx context.Context, chunk string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", s.lang)
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
	return s.get(ctx, s.ttsURL+"?"+q.Encode())
}

func (s *Service) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return io.ReadAll(resp.Body)
}

// Chunk splits text into pieces of at most limit runes, breaking between
// words. A single word longer than limit is cut.
func Chunk(text string, limit int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		n := len(runes)
		if n == 0 {
			continue
		}
		if curLen > 0 && curLen+1+n > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(string(runes))
		curLen += n
	}
	flush()
	return chunks
}
