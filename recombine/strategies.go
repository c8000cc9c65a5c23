package recombine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/arborworks/arbor/session"
	"github.com/arborworks/arbor/tree"
)

var optionPattern = regexp.MustCompile(`(?i)\boption\s*#?(\d+)`)

// Concatenate formats all non-empty candidate texts into one numbered text.
// It is total: it never runs a generation round and never fails. Empty input
// yields ("", nil).
func Concatenate() Strategy {
	return func(_ context.Context, _ *session.Session, texts []string, nodes []*tree.Node) Outcome {
		var b strings.Builder
		for i, text := range texts {
			if text == "" && (i >= len(nodes) || nodes[i] == nil) {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "Option %d:\n%s", i+1, text)
		}
		return Outcome{Text: b.String(), Node: anchorNode(nodes)}
	}
}

// Judge runs one extra generation round asking the provider to pick the best
// candidate. The reply is parsed for an explicit "Option N" marker, then for
// substring containment against the candidates; failing both, the judge's
// raw text is returned. A failed judging round degrades to the first
// candidate with an error annotation appended.
func Judge() Strategy {
	return func(ctx context.Context, s *session.Session, texts []string, nodes []*tree.Node) Outcome {
		if len(texts) == 0 {
			return Outcome{}
		}

		reply, err := s.Query(ctx, judgePrompt(texts))
		if err != nil {
			out := firstCandidate(texts, nodes)
			out.Text = fmt.Sprintf("%s\n\n[judge unavailable: %v]", out.Text, err)
			return out
		}

		anchor := anchorNode(nodes)

		if m := optionPattern.FindStringSubmatch(reply.Text); m != nil {
			if idx, err := strconv.Atoi(m[1]); err == nil && idx >= 1 && idx <= len(texts) {
				return Outcome{Text: texts[idx-1], Node: anchor}
			}
		}

		for i, text := range texts {
			if text == "" {
				continue
			}
			if strings.Contains(reply.Text, text) || strings.Contains(text, reply.Text) {
				return Outcome{Text: texts[i], Node: anchor}
			}
		}

		return Outcome{Text: reply.Text, Node: anchor}
	}
}

// Vote runs the given number of extra generation rounds, each expected to
// answer with a bare candidate number. Votes are tallied; ties break toward
// the lowest candidate index (stable). When no ballot parses, the first
// candidate wins by default.
func Vote(rounds int) Strategy {
	return func(ctx context.Context, s *session.Session, texts []string, nodes []*tree.Node) Outcome {
		if len(texts) == 0 {
			return Outcome{}
		}

		tally := make([]int, len(texts))
		counted := 0

		for round := 0; round < rounds; round++ {
			reply, err := s.Query(ctx, votePrompt(texts))
			if err != nil {
				continue
			}
			ballot, err := strconv.Atoi(strings.TrimSpace(reply.Text))
			if err != nil || ballot < 1 || ballot > len(texts) {
				continue
			}
			tally[ballot-1]++
			counted++
		}

		anchor := anchorNode(nodes)
		if counted == 0 {
			out := firstCandidate(texts, nodes)
			out.Node = anchor
			return out
		}

		winner := 0
		for i, votes := range tally {
			if votes > tally[winner] {
				winner = i
			}
		}
		return Outcome{Text: texts[winner], Node: anchor}
	}
}

// Merge runs one extra generation round asking the provider to synthesize
// all candidates into a single response. A failed synthesis round falls back
// to Concatenate's output. The returned node is always the first
// candidate's, even though the synthesized text differs from that node's
// stored content.
func Merge() Strategy {
	return func(ctx context.Context, s *session.Session, texts []string, nodes []*tree.Node) Outcome {
		if len(texts) == 0 {
			return Outcome{}
		}

		reply, err := s.Query(ctx, mergePrompt(texts))
		if err != nil {
			return Concatenate()(ctx, s, texts, nodes)
		}
		return Outcome{Text: reply.Text, Node: anchorNode(nodes)}
	}
}

func numberedOptions(texts []string) string {
	var b strings.Builder
	for i, text := range texts {
		fmt.Fprintf(&b, "Option %d:\n%s\n\n", i+1, text)
	}
	return b.String()
}

func judgePrompt(texts []string) string {
	return fmt.Sprintf(
		"Several alternative responses follow. Pick the best one and reply with \"Option N\".\n\n%s",
		numberedOptions(texts))
}

func votePrompt(texts []string) string {
	return fmt.Sprintf(
		"Several alternative responses follow. Reply with only the number of the best one.\n\n%s",
		numberedOptions(texts))
}

func mergePrompt(texts []string) string {
	return fmt.Sprintf(
		"Several alternative responses follow. Synthesize them into a single response that keeps the strengths of each.\n\n%s",
		numberedOptions(texts))
}
