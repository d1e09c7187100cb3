// Package backend owns the host-side resources shared by both execution
// tracks: window, screen canvas, resource table, database, time, audio, and
// the event queue.
package backend

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// System is the backend aggregate handed to platform implementations.
// It is single-threaded; host and guest paths mutate it in turn.
type System struct {
	resource *Resource
	database *DatabaseRepository
	time     *Time
	audio    *Audio
	window   Window
	screen   *ImageBuffer
	events   []Event
}

// NewSystem creates a backend for one application instance.
func NewSystem(appID, dataDir string, window Window) *System {
	return &System{
		resource: NewResource(),
		database: NewDatabaseRepository(dataDir, appID),
		time:     NewTime(),
		audio:    NewAudio(),
		window:   window,
		screen:   NewImageBuffer(window.Width(), window.Height()),
	}
}

// Resource returns the mounted file table.
func (s *System) Resource() *Resource { return s.resource }

// Database returns the record store repository.
func (s *System) Database() *DatabaseRepository { return s.database }

// Time returns the client clock.
func (s *System) Time() *Time { return s.time }

// Audio returns the media clip table.
func (s *System) Audio() *Audio { return s.audio }

// Window returns the display surface.
func (s *System) Window() Window { return s.window }

// ScreenCanvas returns the backing canvas the client draws on.
func (s *System) ScreenCanvas() *ImageBuffer { return s.screen }

// PushEvent appends an event to the queue.
func (s *System) PushEvent(e Event) {
	s.events = append(s.events, e)
}

// PopEvent removes and returns the oldest queued event.
func (s *System) PopEvent() (Event, bool) {
	if len(s.events) == 0 {
		return Event{}, false
	}
	e := s.events[0]
	s.events = s.events[1:]
	return e, true
}

// Repaint presents the screen canvas on the window.
func (s *System) Repaint() error {
	return s.window.Repaint(s.screen)
}

// MountZip extracts an application archive into the resource table.
func (s *System) MountZip(data []byte) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("open %q: %w", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read %q: %w", file.Name, err)
		}
		s.resource.Add(file.Name, content)
	}

	return nil
}
