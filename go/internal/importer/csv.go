package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mcdev12/auction/go/internal/models"
	"github.com/rs/zerolog/log"
)

// restrictedMarker in the second column flags a restricted player
const restrictedMarker = "legio"

// CSVSource reads rows of name[,legio][,recent score]. Blank lines and a
// leading "name" header row are skipped.
type CSVSource struct {
	Path string
}

// Load implements Source
func (s *CSVSource) Load(ctx context.Context) ([]models.Player, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open player list: %w", err)
	}
	defer f.Close()

	players, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	log.Info().Str("path", s.Path).Int("players", len(players)).Msg("player list read")
	return players, nil
}

// ParseCSV parses a player list
func ParseCSV(r io.Reader) ([]models.Player, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var players []models.Player
	for first := true; ; first = false {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		if first && strings.EqualFold(name, "name") {
			continue
		}

		p := models.Player{Name: name}
		if len(record) > 1 {
			p.Restricted = strings.EqualFold(strings.TrimSpace(record[1]), restrictedMarker)
		}
		if len(record) > 2 {
			if raw := strings.TrimSpace(record[2]); raw != "" {
				score, err := strconv.Atoi(raw)
				if err != nil || score < 0 {
					return nil, fmt.Errorf("line %d: invalid score %q", line, raw)
				}
				p.RecentScore = score
			}
		}
		players = append(players, p)
	}
	return players, nil
}
