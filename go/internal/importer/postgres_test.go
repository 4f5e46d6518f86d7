package importer

import (
	"database/sql"
	"testing"

	"github.com/sqlc-dev/pqtype"
)

func TestToModel(t *testing.T) {
	wn8 := 1800
	profile, err := ProfileParam(&PlayerProfile{WN8: &wn8, Clan: "RDDT"})
	if err != nil {
		t.Fatalf("ProfileParam() error = %v", err)
	}

	tests := []struct {
		name    string
		row     playerRow
		want    int
		wantErr bool
	}{
		{name: "column wins", row: playerRow{Name: "A", RecentScore: sql.NullInt32{Int32: 900, Valid: true}, Profile: profile}, want: 900},
		{name: "profile fallback", row: playerRow{Name: "B", Profile: profile}, want: 1800},
		{name: "nothing", row: playerRow{Name: "C"}, want: 0},
		{name: "bad profile", row: playerRow{Name: "D", Profile: pqtype.NullRawMessage{RawMessage: []byte("{"), Valid: true}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toModel(tt.row)
			if (err != nil) != tt.wantErr {
				t.Fatalf("toModel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.RecentScore != tt.want {
				t.Fatalf("RecentScore = %d, want %d", got.RecentScore, tt.want)
			}
		})
	}

	if empty, _ := ProfileParam(nil); empty.Valid {
		t.Errorf("ProfileParam(nil) should be NULL")
	}
}
