package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dialectdeck/ledger/internal/model"
	"github.com/dialectdeck/ledger/internal/store"
)

// New opens the database at path, applies migrations and returns the store.
func New(ctx context.Context, path string) (store.Store, *sql.DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return NewWithDB(db), db, nil
}

// NewWithDB wraps an open, migrated connection. Statements inside a
// transaction only use the transaction: the pool holds a single connection.
func NewWithDB(db *sql.DB) store.Store {
	return &sqliteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

func (s *sqliteStore) Profiles() store.Profiles         { return &profiles{s} }
func (s *sqliteStore) Badges() store.Badges             { return &badges{s} }
func (s *sqliteStore) Languages() store.Languages       { return &languages{s} }
func (s *sqliteStore) Dialects() store.Dialects         { return &dialects{s} }
func (s *sqliteStore) Entries() store.Entries           { return &entries{s} }
func (s *sqliteStore) VariantLinks() store.VariantLinks { return &variantLinks{s} }
func (s *sqliteStore) Votes() store.Votes               { return &votes{s} }
func (s *sqliteStore) SeedWords() store.SeedWords       { return &seedWords{s} }
func (s *sqliteStore) DailyLabels() store.DailyLabels   { return &dailyLabels{s} }
func (s *sqliteStore) Events() store.Events             { return &events{s} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Profiles ---

const profileColumns = `user_id, display_name, email, points, words_added, audio_uploaded,
        votes_cast, labels_added, streak_days, last_contribution_date, created_at`

func scanProfile(row store.RowScanner) (*model.Profile, error) {
	var out model.Profile
	var last sql.NullString
	if err := row.Scan(&out.UserID, &out.DisplayName, &out.Email, &out.Points, &out.WordsAdded, &out.AudioUploaded,
		&out.VotesCast, &out.LabelsAdded, &out.StreakDays, &last, &out.CreatedAt); err != nil {
		return nil, err
	}
	d, err := store.NullDate(last)
	if err != nil {
		return nil, err
	}
	out.LastContributionDate = d
	return &out, nil
}

type profiles struct{ s *sqliteStore }

func (p *profiles) Create(ctx context.Context, m *model.Profile) (*model.Profile, error) {
	row := p.s.db.QueryRowContext(ctx, `
        INSERT INTO profiles (user_id, display_name, email, created_at)
        VALUES (?1, ?2, ?3, ?4)
        ON CONFLICT (user_id) DO NOTHING
        RETURNING `+profileColumns, m.UserID, m.DisplayName, m.Email, p.s.now())
	out, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewConflictError("userId", fmt.Sprintf("profile %s already exists", m.UserID))
	}
	return out, err
}

func (p *profiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return getProfile(ctx, p.s.db, userID)
}

func getProfile(ctx context.Context, q store.Querier, userID string) (*model.Profile, error) {
	out, err := scanProfile(q.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("userId", fmt.Sprintf("profile %s", userID))
	}
	return out, err
}

func (p *profiles) Apply(ctx context.Context, userID string, d model.LedgerDelta) (*model.Profile, error) {
	tx, err := p.s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out, err := p.s.applyDelta(ctx, tx, userID, d)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// applyDelta runs the counter update in a single statement and appends the
// matching ledger event. The streak CASE mirrors model.NextStreak.
func (s *sqliteStore) applyDelta(ctx context.Context, q store.Querier, userID string, d model.LedgerDelta) (*model.Profile, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	on := d.OccurredOn.String()
	prev := d.OccurredOn.AddDays(-1).String()
	row := q.QueryRowContext(ctx, `
        UPDATE profiles SET
            points = points + ?2,
            words_added = words_added + ?3,
            audio_uploaded = audio_uploaded + ?4,
            votes_cast = votes_cast + ?5,
            labels_added = labels_added + ?6,
            streak_days = CASE
                WHEN NOT ?7 THEN streak_days
                WHEN last_contribution_date = ?8 THEN streak_days
                WHEN last_contribution_date = ?9 THEN streak_days + 1
                ELSE 1
            END,
            last_contribution_date = CASE WHEN ?7 THEN ?8 ELSE last_contribution_date END
        WHERE user_id = ?1
        RETURNING `+profileColumns,
		userID, d.Points, d.WordsAdded, d.AudioUploaded, d.VotesCast, d.LabelsAdded, d.TouchStreak, on, prev)
	out, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("userId", fmt.Sprintf("profile %s", userID))
	}
	if err != nil {
		return nil, err
	}
	if _, err := q.ExecContext(ctx, `
        INSERT INTO ledger_events (user_id, reason, points, words_added, audio_uploaded, votes_cast, labels_added,
            dialect_id, occurred_on, week_start, created_at)
        VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, ?11)
    `, userID, string(d.Reason), d.Points, d.WordsAdded, d.AudioUploaded, d.VotesCast, d.LabelsAdded,
		store.NullInt64(d.DialectID), on, d.OccurredOn.WeekStart().String(), s.now()); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *profiles) Top(ctx context.Context, limit int) ([]*model.Profile, error) {
	rows, err := p.s.db.QueryContext(ctx, `
        SELECT `+profileColumns+` FROM profiles
        ORDER BY points DESC, user_id
        LIMIT ?1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Profile
	for rows.Next() {
		out, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, out)
	}
	return res, rows.Err()
}

// --- Badges ---

const badgeColumns = `id, name, description, icon, category, requirement_type, requirement_value, points_reward`

func scanBadge(row store.RowScanner) (*model.Badge, error) {
	var b model.Badge
	var req string
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Category, &req, &b.RequirementValue, &b.PointsReward); err != nil {
		return nil, err
	}
	b.RequirementType = model.RequirementType(req)
	return &b, nil
}

type badges struct{ s *sqliteStore }

func (b *badges) Create(ctx context.Context, m *model.Badge) (*model.Badge, error) {
	row := b.s.db.QueryRowContext(ctx, `
        INSERT INTO badges (name, description, icon, category, requirement_type, requirement_value, points_reward)
        VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)
        ON CONFLICT (name) DO NOTHING
        RETURNING `+badgeColumns,
		m.Name, m.Description, m.Icon, m.Category, string(m.RequirementType), m.RequirementValue, m.PointsReward)
	out, err := scanBadge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewConflictError("name", fmt.Sprintf("badge %q already exists", m.Name))
	}
	return out, err
}

func (b *badges) List(ctx context.Context) ([]*model.Badge, error) {
	rows, err := b.s.db.QueryContext(ctx, `SELECT `+badgeColumns+` FROM badges ORDER BY requirement_value, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Badge
	for rows.Next() {
		out, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, out)
	}
	return res, rows.Err()
}

func (b *badges) Award(ctx context.Context, userID string, badge *model.Badge, on model.Date) (bool, error) {
	tx, err := b.s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := getProfile(ctx, tx, userID); err != nil {
		return false, err
	}
	var badgeID int64
	err = tx.QueryRowContext(ctx, `
        INSERT INTO user_badges (user_id, badge_id, earned_at)
        VALUES (?1, ?2, ?3)
        ON CONFLICT (user_id, badge_id) DO NOTHING
        RETURNING badge_id
    `, userID, badge.ID, b.s.now()).Scan(&badgeID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := b.s.applyDelta(ctx, tx, userID, model.LedgerDelta{
		Reason:     model.ReasonBadge,
		Points:     badge.PointsReward,
		OccurredOn: on,
	}); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (b *badges) ListEarned(ctx context.Context, userIDs ...string) ([]*model.UserBadge, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	marks := make([]string, len(userIDs))
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		marks[i] = fmt.Sprintf("?%d", i+1)
		args[i] = id
	}
	rows, err := b.s.db.QueryContext(ctx, `
        SELECT ub.user_id, ub.earned_at, b.id, b.name, b.description, b.icon, b.category,
            b.requirement_type, b.requirement_value, b.points_reward
        FROM user_badges ub JOIN badges b ON b.id = ub.badge_id
        WHERE ub.user_id IN (`+strings.Join(marks, ", ")+`)
        ORDER BY ub.earned_at DESC, b.id
    `, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.UserBadge
	for rows.Next() {
		var ub model.UserBadge
		var bd model.Badge
		var req string
		if err := rows.Scan(&ub.UserID, &ub.EarnedAt, &bd.ID, &bd.Name, &bd.Description, &bd.Icon, &bd.Category,
			&req, &bd.RequirementValue, &bd.PointsReward); err != nil {
			return nil, err
		}
		bd.RequirementType = model.RequirementType(req)
		ub.BadgeID = bd.ID
		ub.Badge = &bd
		res = append(res, &ub)
	}
	return res, rows.Err()
}

// --- Languages ---

type languages struct{ s *sqliteStore }

const languageColumns = `id, name, native_name, region, iso_code, speakers_estimate, created_at`

func scanLanguage(row store.RowScanner) (*model.Language, error) {
	var l model.Language
	var native, region, iso sql.NullString
	var speakers sql.NullInt64
	if err := row.Scan(&l.ID, &l.Name, &native, &region, &iso, &speakers, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.NativeName = store.StringPtr(native)
	l.Region = store.StringPtr(region)
	l.ISOCode = store.StringPtr(iso)
	l.SpeakersEstimate = store.Int64Ptr(speakers)
	return &l, nil
}

func (l *languages) Create(ctx context.Context, m *model.Language) (*model.Language, error) {
	out, err := scanLanguage(l.s.db.QueryRowContext(ctx, `
        INSERT INTO languages (name, native_name, region, iso_code, speakers_estimate, created_at)
        VALUES (?1, ?2, ?3, ?4, ?5, ?6)
        ON CONFLICT (name) DO NOTHING
        RETURNING `+languageColumns,
		m.Name, store.NullString(m.NativeName), store.NullString(m.Region), store.NullString(m.ISOCode),
		store.NullInt64(m.SpeakersEstimate), l.s.now()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewConflictError("name", fmt.Sprintf("language %q already exists", m.Name))
	}
	return out, err
}

func (l *languages) Get(ctx context.Context, id int64) (*model.Language, error) {
	return getLanguage(ctx, l.s.db, id)
}

func getLanguage(ctx context.Context, q store.Querier, id int64) (*model.Language, error) {
	out, err := scanLanguage(q.QueryRowContext(ctx, `SELECT `+languageColumns+` FROM languages WHERE id = ?1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("languageId", fmt.Sprintf("language %d", id))
	}
	return out, err
}

func (l *languages) List(ctx context.Context) ([]*model.Language, error) {
	rows, err := l.s.db.QueryContext(ctx, `SELECT `+languageColumns+` FROM languages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Language
	for rows.Next() {
		out, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, out)
	}
	return res, rows.Err()
}

// --- Dialects ---

type dialects struct{ s *sqliteStore }

func scanDialect(row store.RowScanner) (*model.Dialect, error) {
	var d model.Dialect
	var region sql.NullString
	var lang sql.NullInt64
	if err := row.Scan(&d.ID, &d.Name, &region, &lang, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Region = store.StringPtr(region)
	d.LanguageID = store.Int64Ptr(lang)
	return &d, nil
}

func (d *dialects) Create(ctx context.Context, m *model.Dialect) (*model.Dialect, error) {
	if m.LanguageID != nil {
		if _, err := getLanguage(ctx, d.s.db, *m.LanguageID); err != nil {
			return nil, err
		}
	}
	row := d.s.db.QueryRowContext(ctx, `
        INSERT INTO dialects (name, region, language_id, created_at)
        VALUES (?1, ?2, ?3, ?4)
        ON CONFLICT (name) DO NOTHING
        RETURNING id, name, region, language_id, created_at
    `, m.Name, store.NullString(m.Region), store.NullInt64(m.LanguageID), d.s.now())
	out, err := scanDialect(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewConflictError("name", fmt.Sprintf("dialect %q already exists", m.Name))
	}
	return out, err
}

func (d *dialects) Get(ctx context.Context, id int64) (*model.Dialect, error) {
	return getDialect(ctx, d.s.db, id)
}

func getDialect(ctx context.Context, q store.Querier, id int64) (*model.Dialect, error) {
	out, err := scanDialect(q.QueryRowContext(ctx, `SELECT id, name, region, language_id, created_at FROM dialects WHERE id = ?1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("dialectId", fmt.Sprintf("dialect %d", id))
	}
	return out, err
}

func (d *dialects) List(ctx context.Context, languageID *int64) ([]*model.Dialect, error) {
	rows, err := d.s.db.QueryContext(ctx, `
        SELECT id, name, region, language_id, created_at FROM dialects
        WHERE ?1 IS NULL OR language_id = ?1
        ORDER BY name
    `, store.NullInt64(languageID))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Dialect
	for rows.Next() {
		out, err := scanDialect(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, out)
	}
	return res, rows.Err()
}

// --- Entries ---

type entries struct{ s *sqliteStore }

const entryColumns = `id, word, dialect_id, meaning_en, meaning_ur, example_sentence, script, audio_url, created_by, created_at`

func scanEntry(row store.RowScanner) (*model.Entry, error) {
	var e model.Entry
	var example, script, audio sql.NullString
	if err := row.Scan(&e.ID, &e.Word, &e.DialectID, &e.MeaningEN, &e.MeaningUR, &example, &script, &audio, &e.CreatedBy, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.ExampleSentence = store.StringPtr(example)
	e.Script = store.StringPtr(script)
	e.AudioURL = store.StringPtr(audio)
	return &e, nil
}

func (en *entries) Create(ctx context.Context, e *model.Entry, credit model.LedgerDelta) (*model.Entry, *model.Profile, error) {
	tx, err := en.s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := getDialect(ctx, tx, e.DialectID); err != nil {
		return nil, nil, err
	}
	prof, err := en.s.applyDelta(ctx, tx, e.CreatedBy, credit)
	if err != nil {
		return nil, nil, err
	}

	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	out, err := scanEntry(tx.QueryRowContext(ctx, `
        INSERT INTO entries (id, word, dialect_id, meaning_en, meaning_ur, example_sentence, script, audio_url, created_by, created_at)
        VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10)
        RETURNING `+entryColumns,
		id, e.Word, e.DialectID, e.MeaningEN, e.MeaningUR, store.NullString(e.ExampleSentence),
		store.NullString(e.Script), store.NullString(e.AudioURL), e.CreatedBy, en.s.now()))
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return out, prof, nil
}

func (en *entries) Get(ctx context.Context, entryID string) (*model.Entry, error) {
	return getEntry(ctx, en.s.db, entryID)
}

func getEntry(ctx context.Context, q store.Querier, entryID string) (*model.Entry, error) {
	out, err := scanEntry(q.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?1`, entryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("entryId", fmt.Sprintf("entry %s", entryID))
	}
	return out, err
}

// --- Variant links ---

type variantLinks struct{ s *sqliteStore }

const linkColumns = `id, entry1_id, entry2_id, confidence_score, votes_up, votes_down, created_at`

func scanLink(row store.RowScanner) (*model.VariantLink, error) {
	var l model.VariantLink
	if err := row.Scan(&l.ID, &l.Entry1ID, &l.Entry2ID, &l.ConfidenceScore, &l.VotesUp, &l.VotesDown, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (v *variantLinks) Create(ctx context.Context, l *model.VariantLink) (*model.VariantLink, error) {
	tx, err := v.s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range []string{l.Entry1ID, l.Entry2ID} {
		if _, err := getEntry(ctx, tx, id); err != nil {
			return nil, err
		}
	}
	id := l.ID
	if id == "" {
		id = uuid.New().String()
	}
	out, err := scanLink(tx.QueryRowContext(ctx, `
        INSERT INTO variant_links (id, entry1_id, entry2_id, confidence_score, created_at)
        VALUES (?1, ?2, ?3, ?4, ?5)
        ON CONFLICT DO NOTHING
        RETURNING `+linkColumns, id, l.Entry1ID, l.Entry2ID, l.ConfidenceScore, v.s.now()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewConflictError("entries", fmt.Sprintf("entries %s and %s are already linked", l.Entry1ID, l.Entry2ID))
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *variantLinks) Get(ctx context.Context, linkID string) (*model.VariantLink, error) {
	return getLink(ctx, v.s.db, linkID)
}

func getLink(ctx context.Context, q store.Querier, linkID string) (*model.VariantLink, error) {
	out, err := scanLink(q.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM variant_links WHERE id = ?1`, linkID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("linkId", fmt.Sprintf("variant link %s", linkID))
	}
	return out, err
}

func (v *variantLinks) ListForEntry(ctx context.Context, entryID string) ([]*model.VariantLinkDetail, error) {
	rows, err := v.s.db.QueryContext(ctx, `
        SELECT l.id, l.entry1_id, l.entry2_id, l.confidence_score, l.votes_up, l.votes_down, l.created_at,
            e1.word, e1.meaning_en, e1.meaning_ur, e1.dialect_id, d1.name,
            e2.word, e2.meaning_en, e2.meaning_ur, e2.dialect_id, d2.name
        FROM variant_links l
        JOIN entries e1 ON e1.id = l.entry1_id
        JOIN dialects d1 ON d1.id = e1.dialect_id
        JOIN entries e2 ON e2.id = l.entry2_id
        JOIN dialects d2 ON d2.id = e2.dialect_id
        WHERE l.entry1_id = ?1 OR l.entry2_id = ?1
    `, entryID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.VariantLinkDetail
	for rows.Next() {
		var d model.VariantLinkDetail
		l := &d.Link
		if err := rows.Scan(&l.ID, &l.Entry1ID, &l.Entry2ID, &l.ConfidenceScore, &l.VotesUp, &l.VotesDown, &l.CreatedAt,
			&d.Entry1.Word, &d.Entry1.MeaningEN, &d.Entry1.MeaningUR, &d.Entry1.DialectID, &d.Entry1.DialectName,
			&d.Entry2.Word, &d.Entry2.MeaningEN, &d.Entry2.MeaningUR, &d.Entry2.DialectID, &d.Entry2.DialectName); err != nil {
			return nil, err
		}
		d.Entry1.ID = l.Entry1ID
		d.Entry2.ID = l.Entry2ID
		res = append(res, &d)
	}
	return res, rows.Err()
}

func (v *variantLinks) Recount(ctx context.Context, linkID string) (*model.VariantLink, error) {
	out, err := scanLink(v.s.db.QueryRowContext(ctx, `
        UPDATE variant_links SET
            votes_up = (SELECT COUNT(*) FROM votes WHERE variant_link_id = ?1 AND vote_type = 'correct'),
            votes_down = (SELECT COUNT(*) FROM votes WHERE variant_link_id = ?1 AND vote_type = 'incorrect')
        WHERE id = ?1
        RETURNING `+linkColumns, linkID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("linkId", fmt.Sprintf("variant link %s", linkID))
	}
	return out, err
}

// --- Votes ---

type votes struct{ s *sqliteStore }

const voteColumns = `id, user_id, variant_link_id, vote_type, created_at, updated_at`

func scanVote(row store.RowScanner) (*model.Vote, error) {
	var v model.Vote
	var vt string
	if err := row.Scan(&v.ID, &v.UserID, &v.VariantLinkID, &vt, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.VoteType = model.VoteType(vt)
	return &v, nil
}

func (vs *votes) Cast(ctx context.Context, v *model.Vote, firstVote model.LedgerDelta) (*model.VoteResult, error) {
	tx, err := vs.s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := getLink(ctx, tx, v.VariantLinkID); err != nil {
		return nil, err
	}
	if _, err := getProfile(ctx, tx, v.UserID); err != nil {
		return nil, err
	}

	now := vs.s.now()
	res := &model.VoteResult{}
	inserted, err := scanVote(tx.QueryRowContext(ctx, `
        INSERT INTO votes (id, user_id, variant_link_id, vote_type, created_at, updated_at)
        VALUES (?1, ?2, ?3, ?4, ?5, ?5)
        ON CONFLICT (user_id, variant_link_id) DO NOTHING
        RETURNING `+voteColumns, uuid.New().String(), v.UserID, v.VariantLinkID, string(v.VoteType), now))
	switch {
	case err == nil:
		up, down := v.VoteType.Tally()
		link, err := bumpTally(ctx, tx, v.VariantLinkID, up, down)
		if err != nil {
			return nil, err
		}
		prof, err := vs.s.applyDelta(ctx, tx, v.UserID, firstVote)
		if err != nil {
			return nil, err
		}
		res.Outcome, res.Vote, res.Link, res.Profile = model.VoteRecorded, inserted, link, prof
	case errors.Is(err, sql.ErrNoRows):
		prior, err := scanVote(tx.QueryRowContext(ctx, `
            SELECT `+voteColumns+` FROM votes WHERE user_id = ?1 AND variant_link_id = ?2
        `, v.UserID, v.VariantLinkID))
		if err != nil {
			return nil, err
		}
		if prior.VoteType == v.VoteType {
			link, err := getLink(ctx, tx, v.VariantLinkID)
			if err != nil {
				return nil, err
			}
			res.Outcome, res.Vote, res.Link = model.VoteAlreadyCast, prior, link
			break
		}
		oldUp, oldDown := prior.VoteType.Tally()
		newUp, newDown := v.VoteType.Tally()
		link, err := bumpTally(ctx, tx, v.VariantLinkID, newUp-oldUp, newDown-oldDown)
		if err != nil {
			return nil, err
		}
		updated, err := scanVote(tx.QueryRowContext(ctx, `
            UPDATE votes SET vote_type = ?3, updated_at = ?4
            WHERE user_id = ?1 AND variant_link_id = ?2
            RETURNING `+voteColumns, v.UserID, v.VariantLinkID, string(v.VoteType), now))
		if err != nil {
			return nil, err
		}
		res.Outcome, res.Vote, res.Link, res.Previous = model.VoteChanged, updated, link, prior.VoteType
	default:
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

func bumpTally(ctx context.Context, q store.Querier, linkID string, up, down int) (*model.VariantLink, error) {
	out, err := scanLink(q.QueryRowContext(ctx, `
        UPDATE variant_links SET
            votes_up = MAX(votes_up + ?2, 0),
            votes_down = MAX(votes_down + ?3, 0)
        WHERE id = ?1
        RETURNING `+linkColumns, linkID, up, down))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("linkId", fmt.Sprintf("variant link %s", linkID))
	}
	return out, err
}

func (vs *votes) Get(ctx context.Context, userID, linkID string) (*model.Vote, error) {
	out, err := scanVote(vs.s.db.QueryRowContext(ctx, `
        SELECT `+voteColumns+` FROM votes WHERE user_id = ?1 AND variant_link_id = ?2
    `, userID, linkID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("vote", fmt.Sprintf("no vote by %s on %s", userID, linkID))
	}
	return out, err
}

// --- Seed words ---

type seedWords struct{ s *sqliteStore }

const seedWordColumns = `id, word, meaning_en, meaning_ur, category, created_at`

func scanSeedWord(row store.RowScanner) (*model.SeedWord, error) {
	var w model.SeedWord
	var ur sql.NullString
	if err := row.Scan(&w.ID, &w.Word, &w.MeaningEN, &ur, &w.Category, &w.CreatedAt); err != nil {
		return nil, err
	}
	w.MeaningUR = store.StringPtr(ur)
	return &w, nil
}

func (sw *seedWords) Create(ctx context.Context, w *model.SeedWord) (*model.SeedWord, error) {
	out, err := scanSeedWord(sw.s.db.QueryRowContext(ctx, `
        INSERT INTO seed_words (word, meaning_en, meaning_ur, category, created_at)
        VALUES (?1, ?2, ?3, ?4, ?5)
        ON CONFLICT (word) DO NOTHING
        RETURNING `+seedWordColumns, w.Word, w.MeaningEN, store.NullString(w.MeaningUR), w.Category, sw.s.now()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewConflictError("word", fmt.Sprintf("seed word %q already exists", w.Word))
	}
	return out, err
}

func (sw *seedWords) Get(ctx context.Context, id int64) (*model.SeedWord, error) {
	return getSeedWord(ctx, sw.s.db, id)
}

func getSeedWord(ctx context.Context, q store.Querier, id int64) (*model.SeedWord, error) {
	out, err := scanSeedWord(q.QueryRowContext(ctx, `SELECT `+seedWordColumns+` FROM seed_words WHERE id = ?1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("seedWordId", fmt.Sprintf("seed word %d", id))
	}
	return out, err
}

func (sw *seedWords) List(ctx context.Context, category string) ([]*model.SeedWord, error) {
	rows, err := sw.s.db.QueryContext(ctx, `
        SELECT `+seedWordColumns+` FROM seed_words
        WHERE ?1 = '' OR category = ?1
        ORDER BY id
    `, category)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.SeedWord
	for rows.Next() {
		out, err := scanSeedWord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, out)
	}
	return res, rows.Err()
}

// --- Daily labels ---

type dailyLabels struct{ s *sqliteStore }

func (dl *dailyLabels) Create(ctx context.Context, l *model.DailyLabel, credit model.LedgerDelta) (*model.DailyLabel, *model.Profile, error) {
	tx, err := dl.s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := getSeedWord(ctx, tx, l.SeedWordID); err != nil {
		return nil, nil, err
	}
	if _, err := getDialect(ctx, tx, l.DialectID); err != nil {
		return nil, nil, err
	}
	if _, err := getProfile(ctx, tx, l.UserID); err != nil {
		return nil, nil, err
	}

	id := l.ID
	if id == "" {
		id = uuid.New().String()
	}
	var out model.DailyLabel
	var audio sql.NullString
	err = tx.QueryRowContext(ctx, `
        INSERT INTO daily_labels (id, user_id, seed_word_id, dialect_id, label_text, audio_url, created_at)
        VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)
        ON CONFLICT (user_id, seed_word_id, dialect_id) DO NOTHING
        RETURNING id, user_id, seed_word_id, dialect_id, label_text, audio_url, created_at
    `, id, l.UserID, l.SeedWordID, l.DialectID, l.LabelText, store.NullString(l.AudioURL), dl.s.now()).
		Scan(&out.ID, &out.UserID, &out.SeedWordID, &out.DialectID, &out.LabelText, &audio, &out.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, model.NewConflictError("seedWordId", "already labeled this word in this dialect")
	}
	if err != nil {
		return nil, nil, err
	}
	out.AudioURL = store.StringPtr(audio)

	prof, err := dl.s.applyDelta(ctx, tx, l.UserID, credit)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &out, prof, nil
}

// --- Events ---

type events struct{ s *sqliteStore }

func (e *events) WeeklyContributions(ctx context.Context, weekStart model.Date) ([]*model.WeeklyContribution, error) {
	rows, err := e.s.db.QueryContext(ctx, `
        SELECT ev.user_id, p.display_name, ev.dialect_id, d.name, d.region,
            SUM(ev.words_added), SUM(ev.audio_uploaded), SUM(ev.labels_added), SUM(ev.points)
        FROM ledger_events ev
        JOIN profiles p ON p.user_id = ev.user_id
        JOIN dialects d ON d.id = ev.dialect_id
        WHERE ev.week_start = ?1 AND ev.dialect_id IS NOT NULL
        GROUP BY ev.user_id, p.display_name, ev.dialect_id, d.name, d.region
        ORDER BY SUM(ev.points) DESC, ev.user_id, ev.dialect_id
    `, weekStart.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.WeeklyContribution
	for rows.Next() {
		var wc model.WeeklyContribution
		var region sql.NullString
		if err := rows.Scan(&wc.UserID, &wc.UserName, &wc.DialectID, &wc.DialectName, &region,
			&wc.WordsAdded, &wc.AudioUploaded, &wc.LabelsAdded, &wc.PointsEarned); err != nil {
			return nil, err
		}
		wc.Region = store.StringPtr(region)
		res = append(res, &wc)
	}
	return res, rows.Err()
}

func (e *events) SumPoints(ctx context.Context, userID string) (int, error) {
	var sum int
	err := e.s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(points), 0) FROM ledger_events WHERE user_id = ?1`, userID).Scan(&sum)
	return sum, err
}
