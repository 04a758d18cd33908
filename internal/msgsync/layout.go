package msgsync

import "time"

type ItemKind int

const (
	ItemDateSeparator ItemKind = iota
	ItemMessage
)

// Item is one row of a laid-out timeline. Separators carry only Date.
type Item struct {
	Kind    ItemKind
	Date    time.Time
	Message Message
	Own     bool
	// First and Last mark the edges of a cluster: consecutive messages from
	// one sender on one calendar day.
	First bool
	Last  bool
}

func calendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Layout turns an ordered timeline into rows with date separators and
// cluster markers. Dates are calendar days in loc.
func Layout(messages []Message, self uint, loc *time.Location) []Item {
	if loc == nil {
		loc = time.Local
	}
	items := make([]Item, 0, len(messages)+4)
	var prevDay time.Time
	var prevSender uint
	for i, m := range messages {
		day := calendarDay(m.CreatedAt, loc)
		newDay := i == 0 || !day.Equal(prevDay)
		if newDay {
			items = append(items, Item{Kind: ItemDateSeparator, Date: day})
		}

		first := newDay || m.SenderID != prevSender
		if first && i > 0 && !newDay {
			// close the previous cluster
			items[len(items)-1].Last = true
		}
		if newDay && i > 0 {
			items[len(items)-2].Last = true
		}

		items = append(items, Item{
			Kind:    ItemMessage,
			Date:    day,
			Message: m,
			Own:     m.SenderID == self,
			First:   first,
		})
		prevDay, prevSender = day, m.SenderID
	}
	if len(messages) > 0 {
		items[len(items)-1].Last = true
	}
	return items
}
