package alert

import (
	"fmt"
	"time"

	"github.com/launchtrack/missioncontrol/model"
)

// MissionEmbed builds the rich archival notice for a mission. Optional
// fields are only included when the mission carries them.
func MissionEmbed(m *model.Mission) Embed {
	fields := []EmbedField{
		{Name: "Date", Value: m.Date.Format(time.RFC1123), Inline: true},
		{Name: "Status", Value: string(m.Status), Inline: true},
	}

	if m.Description != "" {
		fields = append(fields, EmbedField{Name: "Description", Value: m.Description, Inline: true})
	}

	if m.HasWindow() {
		fields = append(fields, EmbedField{
			Name:   "Launch Window",
			Value:  fmt.Sprintf("%s to %s", m.WindowStart.Format(time.RFC1123), m.WindowEnd.Format(time.RFC1123)),
			Inline: false,
		})
	}

	if m.Probability != nil {
		fields = append(fields, EmbedField{
			Name:   "Probability of Launch",
			Value:  fmt.Sprintf("%d%%", *m.Probability),
			Inline: true,
		})
	}

	if m.Livestream != "" {
		fields = append(fields, EmbedField{Name: "Livestream", Value: m.Livestream, Inline: true})
	}

	embed := Embed{
		Title:       "Archived launch: " + m.Name,
		URL:         m.Livestream,
		Description: m.Description,
		Fields:      fields,
		Footer:      &EmbedFooter{Text: "Mission ID: " + m.ID},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	if m.PatchImageURL != "" {
		embed.Image = &EmbedImage{URL: m.PatchImageURL}
	}

	return embed
}
