package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type EngineConfig struct {
	ID       int
	Name     string
	Kind     string
	Depth    int
	Duration time.Duration
	Playouts int
}

type GameRecord struct {
	ID    int
	White int // EngineConfig.ID
	Black int // EngineConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Standing struct {
	Engine int // EngineConfig.ID
	Name   string
	Games  int
	Wins   int
	Draws  int
	Losses int
}

// Points counts a win as one point and a draw as half a point.
func (s Standing) Points() float64 {
	return float64(s.Wins) + float64(s.Draws)/2
}

type Writer struct {
	baseDir string
}

// NewWriter creates the directory <root>/<name>/<timestamp> for the reports
// of one experiment.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteEngineConfigs(configs []EngineConfig) error {
	header := []string{"id", "name", "kind", "depth", "duration", "playouts"}
	rows := make([][]string, len(configs))
	for i, config := range configs {
		rows[i] = []string{
			strconv.Itoa(config.ID),
			config.Name,
			config.Kind,
			strconv.Itoa(config.Depth),
			config.Duration.String(),
			strconv.Itoa(config.Playouts),
		}
	}
	return w.write("engine_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "game", "white", "black", "winner", "moves", "start_time", "end_time", "duration", "final_state"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.ID),
			record.Game,
			strconv.Itoa(record.White),
			strconv.Itoa(record.Black),
			record.Winner.String(),
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			record.FinalState,
		}
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "side", "move", "engine", "depth", "duration", "nodes", "playouts", "chunks", "lookup"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			record.Side.String(),
			record.Move,
			record.Engine,
			strconv.Itoa(record.Depth),
			record.Duration.String(),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.Playouts),
			strconv.Itoa(record.Chunks),
			strconv.FormatBool(record.Lookup),
		}
	}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) WriteStandings(standings []Standing) error {
	header := []string{"engine", "name", "games", "wins", "draws", "losses", "points"}
	rows := make([][]string, len(standings))
	for i, s := range standings {
		rows[i] = []string{
			strconv.Itoa(s.Engine),
			s.Name,
			strconv.Itoa(s.Games),
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Draws),
			strconv.Itoa(s.Losses),
			strconv.FormatFloat(s.Points(), 'f', 1, 64),
		}
	}
	return w.write("standings.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
