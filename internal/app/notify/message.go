package notify

import (
	"fmt"
	"strconv"
	"strings"

	"kinbrio/internal/app/model"
)

// Message is a rendered notification and the category of rooms it goes to.
type Message struct {
	Category model.NotificationCategory
	Body     string
}

// Templates renders creation notices with deep links under BaseURL.
type Templates struct {
	BaseURL string
}

func (t Templates) link(kind, key string) string {
	return strings.TrimRight(t.BaseURL, "/") + "/" + kind + "/" + key
}

func (t Templates) Task(task model.Task) Message {
	days := strconv.FormatFloat(task.EstimatedDays(), 'f', -1, 64)
	return Message{
		Category: model.CategoryTask,
		Body: fmt.Sprintf("New Task 🚀 \n %s day(s) Task: %s\n `%s`\n  %s",
			days, task.Name, task.Description, t.link("task", task.Key.String())),
	}
}

func (t Templates) Project(p model.Project) Message {
	return Message{
		Category: model.CategoryProject,
		Body: fmt.Sprintf("New Project 🚀 \n %s\n `%s`\n  %s",
			p.Name, p.Description, t.link("project", p.Key.String())),
	}
}

func (t Templates) Board(b model.Board) Message {
	return Message{
		Category: model.CategoryBoard,
		Body: fmt.Sprintf("New Board 🚀 \n  %s\n `%s`\n  %s",
			b.Name, b.Description, t.link("board", b.Key.String())),
	}
}

func (t Templates) Milestone(m model.Milestone) Message {
	return Message{
		Category: model.CategoryMilestone,
		Body: fmt.Sprintf("New Milestone 🚀 \n %s\n `%s`\n  %s",
			m.Name, m.Description, t.link("milestone", m.Key.String())),
	}
}

func (t Templates) File(f model.File) Message {
	return Message{
		Category: model.CategoryFile,
		Body: fmt.Sprintf("New File 🚀 \n %s\n `%s`\n  %s",
			f.Name, f.Description, t.link("file", f.Key.String())),
	}
}

func (t Templates) Room(r model.Room) Message {
	return Message{
		Category: model.CategoryRoom,
		Body: fmt.Sprintf("New Room 🚀 \n %s \n `%s`\n  %s",
			r.Name, r.Description, t.link("room", r.Key.String())),
	}
}

func (t Templates) Entity(e model.Entity) Message {
	return Message{
		Category: model.CategoryEntity,
		Body: fmt.Sprintf("New Entity Added 🚀 \n  %s\n `%s`\n  %s",
			e.Name, e.Description, t.link("entity", e.Key.String())),
	}
}

// Contact notices go to Entity rooms.
func (t Templates) Contact(c model.Contact) Message {
	return Message{
		Category: model.CategoryEntity,
		Body: fmt.Sprintf("New Contact Added 🚀 \n  %s %s\n  %s",
			c.FirstName, c.LastName, t.link("contact", c.Key.String())),
	}
}

// Note notices go to Entity rooms and link through the contact page.
func (t Templates) Note(n model.Note) Message {
	return Message{
		Category: model.CategoryEntity,
		Body: fmt.Sprintf("New Note Added 🚀 \n  %s \n  %s",
			n.Title, t.link("contact", n.Key.String())),
	}
}
