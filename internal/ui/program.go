package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/service"
	"github.com/dpshade/kubejs-editor/internal/session"
)

// Run starts the terminal editor and blocks until it exits
func Run(svc *service.Service) error {
	m, err := NewModel(svc)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	stop := forwardStatus(m.session.Status(), p.Send)
	defer stop()

	_, err = p.Run()
	return err
}

// forwardStatus passes status changes to send from its own goroutine. Status
// changes raised inside Update would otherwise block on the program loop they
// are running in. Updates that arrive while the queue is full are dropped;
// the model reads the current message on every update anyway.
func forwardStatus(board *session.StatusBoard, send func(tea.Msg)) (stop func()) {
	updates := make(chan models.StatusMessage, 16)
	done := make(chan struct{})

	cancel := board.OnChange(func(msg models.StatusMessage) {
		select {
		case updates <- msg:
		default:
		}
	})

	go func() {
		for {
			select {
			case msg := <-updates:
				send(statusMsg(msg))
			case <-done:
				return
			}
		}
	}()

	return func() {
		cancel()
		close(done)
	}
}
