package domain

import "fmt"

// Stream names
const (
	StreamTitleSync = "stream:land-registry:title:sync"
)

// TitleEventType - тип события синхронизации
type TitleEventType string

const (
	TitleEventUpsert TitleEventType = "upsert"
	TitleEventDelete TitleEventType = "delete"
)

// TitleEvent - входящее событие синхронизации участков из реестра
type TitleEvent struct {
	Type   TitleEventType       `json:"type"`
	Titles []*LandRegistryTitle `json:"titles,omitempty"`
	IDs    []string             `json:"ids,omitempty"`
}

// Validate проверяет, что событие можно применить
func (e *TitleEvent) Validate() error {
	switch e.Type {
	case TitleEventUpsert:
		if len(e.Titles) == 0 {
			return fmt.Errorf("upsert event without titles")
		}
		for _, t := range e.Titles {
			if t == nil || t.ID == "" {
				return fmt.Errorf("upsert event contains title without id")
			}
			if len(t.Polygon) == 0 {
				return fmt.Errorf("upsert event contains title %s without polygon", t.ID)
			}
		}
	case TitleEventDelete:
		if len(e.IDs) == 0 {
			return fmt.Errorf("delete event without ids")
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
