package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/xaenox/huddle-bot/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	return OpenPostgres(config.DSN(), logger)
}

// OpenPostgres connects with a lib/pq connection string or URL and applies
// the embedded schema.
func OpenPostgres(dsn string, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("PostgreSQL storage ready")
	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const messageColumns = `id, sender, avatar, content, channel, created_at, intelligence,
	task_added, follow_up_added, decision_added, meeting_added, is_processing`

func scanMessage(row rowScanner) (*models.Message, error) {
	msg := &models.Message{}
	var intel []byte
	err := row.Scan(
		&msg.ID,
		&msg.Sender,
		&msg.Avatar,
		&msg.Content,
		&msg.Channel,
		&msg.CreatedAt,
		&intel,
		&msg.TaskAdded,
		&msg.FollowUpAdded,
		&msg.DecisionAdded,
		&msg.MeetingAdded,
		&msg.IsProcessing,
	)
	if err != nil {
		return nil, err
	}
	if len(intel) > 0 {
		msg.Intelligence = &models.Intelligence{}
		if err := json.Unmarshal(intel, msg.Intelligence); err != nil {
			return nil, fmt.Errorf("error decoding intelligence: %w", err)
		}
	}
	return msg, nil
}

// encodeIntelligence returns a NULL-able jsonb parameter.
func encodeIntelligence(intel *models.Intelligence) (any, error) {
	if intel == nil {
		return nil, nil
	}
	raw, err := json.Marshal(intel)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (s *PostgresStorage) AppendMessage(ctx context.Context, msg *models.Message) error {
	intel, err := encodeIntelligence(msg.Intelligence)
	if err != nil {
		return fmt.Errorf("error encoding intelligence: %w", err)
	}

	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = s.db.ExecContext(ctx, query,
		msg.ID, msg.Sender, msg.Avatar, msg.Content, msg.Channel, msg.CreatedAt, intel,
		msg.TaskAdded, msg.FollowUpAdded, msg.DecisionAdded, msg.MeetingAdded, msg.IsProcessing)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("message %s: %w", msg.ID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("error appending message: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	msg, err := scanMessage(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying message: %w", err)
	}
	return msg, nil
}

func (s *PostgresStorage) UpdateMessage(ctx context.Context, id string, patch MessagePatch) error {
	intel, err := encodeIntelligence(patch.Intelligence)
	if err != nil {
		return fmt.Errorf("error encoding intelligence: %w", err)
	}

	query := `
		UPDATE messages SET
			is_processing   = COALESCE($2::boolean, is_processing),
			intelligence    = COALESCE($3::jsonb, intelligence),
			task_added      = COALESCE($4::boolean, task_added),
			follow_up_added = COALESCE($5::boolean, follow_up_added),
			decision_added  = COALESCE($6::boolean, decision_added),
			meeting_added   = COALESCE($7::boolean, meeting_added)
		WHERE id = $1`

	_, err = s.db.ExecContext(ctx, query, id,
		patch.IsProcessing, intel, patch.TaskAdded, patch.FollowUpAdded, patch.DecisionAdded, patch.MeetingAdded)
	if err != nil {
		return fmt.Errorf("error updating message: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListMessages(ctx context.Context, channel string) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE $1 = '' OR channel = $1
		ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, channel)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *PostgresStorage) SaveTask(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, title, due_date, assignee, completed, from_message_id, channel, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			due_date = EXCLUDED.due_date,
			assignee = EXCLUDED.assignee,
			completed = EXCLUDED.completed`

	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.Title, task.DueDate, task.Assignee, task.Completed,
		task.FromMessageID, task.Channel, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving task: %w", err)
	}
	return nil
}

const taskColumns = `id, title, due_date, assignee, completed, from_message_id, channel, created_at`

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.DueDate,
		&task.Assignee,
		&task.Completed,
		&task.FromMessageID,
		&task.Channel,
		&task.CreatedAt,
	)
	return task, err
}

func (s *PostgresStorage) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying task: %w", err)
	}
	return task, nil
}

func (s *PostgresStorage) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListTasks(ctx context.Context) ([]*models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *PostgresStorage) SaveFollowUp(ctx context.Context, fu *models.FollowUp) error {
	query := `
		INSERT INTO follow_ups (id, question, directed_at, suggested_reply, from_sender, from_message_id, resolved, channel, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET resolved = EXCLUDED.resolved`

	_, err := s.db.ExecContext(ctx, query,
		fu.ID, fu.Question, fu.DirectedAt, fu.SuggestedReply, fu.FromSender,
		fu.FromMessageID, fu.Resolved, fu.Channel, fu.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving follow-up: %w", err)
	}
	return nil
}

const followUpColumns = `id, question, directed_at, suggested_reply, from_sender, from_message_id, resolved, channel, created_at`

func scanFollowUp(row rowScanner) (*models.FollowUp, error) {
	fu := &models.FollowUp{}
	err := row.Scan(
		&fu.ID,
		&fu.Question,
		&fu.DirectedAt,
		&fu.SuggestedReply,
		&fu.FromSender,
		&fu.FromMessageID,
		&fu.Resolved,
		&fu.Channel,
		&fu.CreatedAt,
	)
	return fu, err
}

func (s *PostgresStorage) GetFollowUp(ctx context.Context, id string) (*models.FollowUp, error) {
	fu, err := scanFollowUp(s.db.QueryRowContext(ctx, `SELECT `+followUpColumns+` FROM follow_ups WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying follow-up: %w", err)
	}
	return fu, nil
}

func (s *PostgresStorage) DeleteFollowUp(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM follow_ups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting follow-up: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListFollowUps(ctx context.Context) ([]*models.FollowUp, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+followUpColumns+` FROM follow_ups ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying follow-ups: %w", err)
	}
	defer rows.Close()

	var out []*models.FollowUp
	for rows.Next() {
		fu, err := scanFollowUp(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning follow-up: %w", err)
		}
		out = append(out, fu)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) SaveDecision(ctx context.Context, d *models.Decision) error {
	query := `
		INSERT INTO decisions (id, summary, made_by, context, from_message_id, channel, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.Summary, d.MadeBy, d.Context, d.FromMessageID, d.Channel, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving decision: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteDecision(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM decisions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting decision: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListDecisions(ctx context.Context) ([]*models.Decision, error) {
	query := `
		SELECT id, summary, made_by, context, from_message_id, channel, created_at
		FROM decisions
		ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying decisions: %w", err)
	}
	defer rows.Close()

	var out []*models.Decision
	for rows.Next() {
		d := &models.Decision{}
		if err := rows.Scan(&d.ID, &d.Summary, &d.MadeBy, &d.Context, &d.FromMessageID, &d.Channel, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) SaveMeeting(ctx context.Context, m *models.Meeting) error {
	query := `
		INSERT INTO meetings (id, topic, time, participants, suggested_agenda, notes, notes_added, from_message_id, channel, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			suggested_agenda = EXCLUDED.suggested_agenda,
			notes = EXCLUDED.notes,
			notes_added = EXCLUDED.notes_added`

	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.Topic, m.Time, m.Participants, m.SuggestedAgenda, m.Notes, m.NotesAdded,
		m.FromMessageID, m.Channel, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving meeting: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListMeetings(ctx context.Context) ([]*models.Meeting, error) {
	query := `
		SELECT id, topic, time, participants, suggested_agenda, notes, notes_added, from_message_id, channel, created_at
		FROM meetings
		ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying meetings: %w", err)
	}
	defer rows.Close()

	var out []*models.Meeting
	for rows.Next() {
		m := &models.Meeting{}
		err := rows.Scan(
			&m.ID,
			&m.Topic,
			&m.Time,
			&m.Participants,
			&m.SuggestedAgenda,
			&m.Notes,
			&m.NotesAdded,
			&m.FromMessageID,
			&m.Channel,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning meeting: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
