package postgres

// Registration and aggregate queries. Counter writes are always relative
// increments; the table CHECK constraints reject anything that would go
// negative or past capacity.

const (
	aggregateColumns = `event_id, year, capacity, registered_count, checked_in_count, waitlist_count, cancelled_count, updated_at`

	registrationColumns = `id, attendee_id, event_id, year, status, fields, created_at, updated_at`

	// queryInitAggregate materialises the counter row from the owning event the
	// first time an occurrence is written to.
	queryInitAggregate = `
		INSERT INTO event_aggregates (event_id, year, capacity, updated_at)
		SELECT event_id, year, capacity, $3
		FROM events
		WHERE event_id = $1 AND year = $2
		ON CONFLICT (event_id, year) DO NOTHING
	`

	queryLockAggregate = `
		SELECT ` + aggregateColumns + `
		FROM event_aggregates
		WHERE event_id = $1 AND year = $2
		FOR UPDATE
	`

	// queryGetAggregate reads without locking and falls back to the event's
	// capacity with zero counts when nothing has been written yet.
	queryGetAggregate = `
		SELECT
			e.event_id,
			e.year,
			COALESCE(a.capacity, e.capacity),
			COALESCE(a.registered_count, 0),
			COALESCE(a.checked_in_count, 0),
			COALESCE(a.waitlist_count, 0),
			COALESCE(a.cancelled_count, 0),
			COALESCE(a.updated_at, e.created_at)
		FROM events e
		LEFT JOIN event_aggregates a ON a.event_id = e.event_id AND a.year = e.year
		WHERE e.event_id = $1 AND e.year = $2
	`

	queryApplyDelta = `
		UPDATE event_aggregates
		SET registered_count = registered_count + $3,
		    checked_in_count = checked_in_count + $4,
		    waitlist_count   = waitlist_count + $5,
		    cancelled_count  = cancelled_count + $6,
		    updated_at       = $7
		WHERE event_id = $1 AND year = $2
	`

	queryGetRegistration = `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE attendee_id = $1 AND event_id = $2 AND year = $3
	`

	queryGetRegistrationForUpdate = queryGetRegistration + ` FOR UPDATE`

	// queryInsertRegistration returns no rows (sql.ErrNoRows) when the
	// (attendee, event, year) key is already taken.
	queryInsertRegistration = `
		INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (attendee_id, event_id, year) DO NOTHING
		RETURNING id
	`

	queryUpdateRegistrationStatus = `
		UPDATE registrations
		SET status = $4, updated_at = $5
		WHERE attendee_id = $1 AND event_id = $2 AND year = $3
	`

	queryDeleteRegistration = `
		DELETE FROM registrations
		WHERE attendee_id = $1 AND event_id = $2 AND year = $3
	`

	queryEventExists = `SELECT EXISTS (SELECT 1 FROM events WHERE event_id = $1 AND year = $2)`

	queryAttendeeExists = `SELECT EXISTS (SELECT 1 FROM attendees WHERE attendee_id = $1)`

	querySeedEvent = `
		INSERT INTO events (event_id, year, name, capacity, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, year) DO NOTHING
	`

	querySeedAttendee = `
		INSERT INTO attendees (attendee_id, email, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (attendee_id) DO NOTHING
	`
)

// Ledger queries.

const (
	// queryAddCredits returns no rows when the balance record is absent;
	// a grant never creates a balance on its own.
	queryAddCredits = `
		UPDATE user_balances
		SET credits = credits + $2, updated_at = $3
		WHERE user_id = $1
		RETURNING credits
	`

	queryGetBalance = `SELECT user_id, credits, updated_at FROM user_balances WHERE user_id = $1`

	queryOpenBalance = `
		INSERT INTO user_balances (user_id, credits, updated_at)
		VALUES ($1, 0, $2)
		ON CONFLICT (user_id) DO NOTHING
	`

	// queryLockCreditAppend serialises appends for the rest of the transaction,
	// so seq values become visible in the order they were assigned and a
	// reader that acks seq N can never later see a row below N commit.
	queryLockCreditAppend = `SELECT pg_advisory_xact_lock(hashtext('credit_transactions'))`

	queryAppendCredit = `
		INSERT INTO credit_transactions (id, op, user_id, amount, observed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`

	queryReadStreamCheckpoint = `SELECT cursor FROM stream_checkpoints WHERE stream = $1`

	queryCreditsAfterCursor = `
		SELECT seq, id, op, user_id, amount, observed_at
		FROM credit_transactions
		WHERE seq > $1
		ORDER BY seq ASC
		LIMIT $2
	`

	// queryAdvanceStreamCheckpoint only ever moves the cursor forward, so a
	// stale ack cannot rewind a newer one.
	queryAdvanceStreamCheckpoint = `
		INSERT INTO stream_checkpoints (stream, cursor, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (stream) DO UPDATE
		SET cursor = EXCLUDED.cursor, updated_at = EXCLUDED.updated_at
		WHERE stream_checkpoints.cursor < EXCLUDED.cursor
	`
)
