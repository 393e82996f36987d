package submission

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Alijeyrad/formsbot/pkg/wynncraft"
)

// ANSI sequences understood by Discord's ansi code blocks.
const (
	ansiReset     = "\u001b[0m"
	ansiBoldBlue  = "\u001b[1;34;48m"
	ansiBoldRed   = "\u001b[1;31;48m"
	ansiBoldGreen = "\u001b[1;32;48m"
	ansiBlue      = "\u001b[0;34;48m"
	ansiGreen     = "\u001b[0;32;48m"
)

// ProfileSource looks up a Wynncraft player profile.
type ProfileSource interface {
	Profile(ctx context.Context, name string) (*wynncraft.Profile, error)
}

// WynncraftEnricher renders player stats for an identity answer holding a
// Minecraft username.
type WynncraftEnricher struct {
	source ProfileSource
}

func NewWynncraftEnricher(source ProfileSource) *WynncraftEnricher {
	return &WynncraftEnricher{source: source}
}

func (e *WynncraftEnricher) Enrich(ctx context.Context, identity string) ([]NotificationField, error) {
	p, err := e.source.Profile(ctx, identity)
	if err != nil {
		return nil, err
	}
	// Casers keep state between calls and are not safe to share.
	title := cases.Title(language.Und)

	guild := "None"
	if p.Guild != nil {
		guild = fmt.Sprintf("%s %s[%s%s%s] - %s%s",
			p.Guild.Name, ansiReset, ansiBoldGreen, p.Guild.Prefix, ansiReset, ansiGreen, title.String(p.Guild.Rank))
	}
	rank := "None"
	if p.SupportRank != nil {
		rank = title.String(*p.SupportRank)
	}

	summary := strings.Join([]string{
		ansiBoldBlue + "Player Stats of " + ansiBoldRed + p.Username,
		ansiBlue + "Current Guild:  " + ansiGreen + guild,
		ansiBlue + "Highest Class:  " + ansiGreen + title.String(p.Highest.Type) + " Lv. " + strconv.Itoa(p.Highest.Level),
	}, "\n")

	return []NotificationField{
		{Name: "\u200b", Value: codeBlock("ansi", summary)},
		{Name: "Total Level", Value: codeBlock("hs", strconv.Itoa(p.GlobalData.TotalLevel)), Inline: true},
		{Name: "Wars", Value: codeBlock("hs", strconv.Itoa(p.GlobalData.Wars)), Inline: true},
		{Name: "Rank", Value: codeBlock("hs", rank), Inline: true},
		{Name: "First Join", Value: codeBlock("hs", datePart(p.FirstJoin)), Inline: true},
		{Name: "Last Seen", Value: codeBlock("hs", datePart(p.LastJoin)), Inline: true},
		{Name: "Playtime", Value: codeBlock("hs", fmt.Sprintf("%.0f Hours", p.Playtime)), Inline: true},
	}, nil
}

func codeBlock(lang, body string) string {
	return "```" + lang + "\n" + body + "\n```"
}

func datePart(ts string) string {
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}
