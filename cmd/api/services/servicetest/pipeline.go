package servicetest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"yt-summary/media"
	"yt-summary/models"
	"yt-summary/storage"
)

// Media serves canned metadata and writes a placeholder audio file.
type Media struct {
	mu       sync.Mutex
	Videos   map[string]media.Metadata
	AudioErr error
	// Dirs records every directory FetchAudio was handed.
	Dirs []string
}

func NewMedia(videos ...media.Metadata) *Media {
	m := &Media{Videos: map[string]media.Metadata{}}
	for _, v := range videos {
		m.Videos[v.VideoID] = v
	}
	return m
}

func (m *Media) FetchMetadata(_ context.Context, videoID string) (media.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Videos[videoID]
	if !ok {
		return media.Metadata{}, media.ErrUnavailable
	}
	return v, nil
}

func (m *Media) FetchAudio(_ context.Context, videoID, dir string) (string, error) {
	m.mu.Lock()
	m.Dirs = append(m.Dirs, dir)
	err := m.AudioErr
	m.mu.Unlock()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "audio.mp3")
	if err := os.WriteFile(p, []byte("fake audio for "+videoID), 0o600); err != nil {
		return "", err
	}
	return p, nil
}

func (m *Media) AudioDirs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Dirs...)
}

type Transcriber struct {
	Text  string
	Err   error
	Calls int
}

func (t *Transcriber) Transcribe(_ context.Context, audioPath string) (string, error) {
	t.Calls++
	if t.Err != nil {
		return "", t.Err
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", err
	}
	return t.Text, nil
}

type Summarizer struct {
	mu        sync.Mutex
	Summary   string
	Reply     string
	Err       error
	Chunks    [][]string
	Questions []string
}

func (s *Summarizer) Summarize(_ context.Context, chunks []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Chunks = append(s.Chunks, chunks)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Summary, nil
}

func (s *Summarizer) Answer(_ context.Context, summary, question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Questions = append(s.Questions, question)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply + " [" + summary + "]", nil
}

// Artifacts is a bucket in memory. Store fails for names containing FailOn when StoreErr is set.
type Artifacts struct {
	mu       sync.Mutex
	Objects  map[string]string
	Deleted  []string
	StoreErr error
	FailOn   string
	SignErr  error
}

func NewArtifacts() *Artifacts {
	return &Artifacts{Objects: map[string]string{}}
}

func (a *Artifacts) Store(_ context.Context, name, content string) (storage.Artifact, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.StoreErr != nil && strings.Contains(name, a.FailOn) {
		return storage.Artifact{}, a.StoreErr
	}
	a.Objects[name] = content
	return storage.Artifact{Key: name, URL: "https://bucket.example/" + name + "?sig=stored"}, nil
}

func (a *Artifacts) SignedURL(_ context.Context, key string) (string, error) {
	if a.SignErr != nil {
		return "", a.SignErr
	}
	return "https://bucket.example/" + key + "?sig=fresh", nil
}

func (a *Artifacts) Load(_ context.Context, key string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.Objects[key]
	if !ok {
		return "", os.ErrNotExist
	}
	return v, nil
}

func (a *Artifacts) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.Objects, key)
	a.Deleted = append(a.Deleted, key)
	return nil
}

func (a *Artifacts) Keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	keys := make([]string, 0, len(a.Objects))
	for k := range a.Objects {
		keys = append(keys, k)
	}
	return keys
}

type Published struct {
	Record   models.Summarization
	Resource models.VideoResource
	Reused   bool
}

type Publisher struct {
	mu     sync.Mutex
	Events []Published
	Err    error
}

func (p *Publisher) PublishSummarizationCreated(_ context.Context, record models.Summarization, resource models.VideoResource, reused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, Published{Record: record, Resource: resource, Reused: reused})
	return nil
}
