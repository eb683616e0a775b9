package msglog

import (
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// CreateTableSQL creates the table SQLSink writes to.
const CreateTableSQL = `CREATE TABLE IF NOT EXISTS emi_log (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	ts DATETIME(3) NOT NULL,
	session_id VARCHAR(64) NOT NULL,
	remote VARCHAR(64) NOT NULL,
	direction VARCHAR(3) NOT NULL,
	kind VARCHAR(16) NOT NULL,
	title TEXT NOT NULL,
	raw TEXT NOT NULL
)`

const insertSQL = `INSERT INTO emi_log SET ts=?,session_id=?,remote=?,direction=?,kind=?,title=?,raw=?`

// sqlQueueSize bounds entries waiting for the database.
const sqlQueueSize = 1024

// SQLSink stores entries in MySQL. Writes happen on a background goroutine
// so a slow database never stalls a session; entries are dropped with a
// warning when the queue is full.
type SQLSink struct {
	db    *sql.DB
	stmt  *sql.Stmt
	log   *logrus.Entry
	queue chan Entry

	closeOnce sync.Once
	done      chan struct{}
}

// Connect opens a MySQL database and checks it is reachable.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewSQLSink prepares the insert statement, creating the table if needed,
// and starts the writer.
func NewSQLSink(db *sql.DB, log *logrus.Logger) (*SQLSink, error) {
	if _, err := db.Exec(CreateTableSQL); err != nil {
		return nil, err
	}
	stmt, err := db.Prepare(insertSQL)
	if err != nil {
		return nil, err
	}

	s := &SQLSink{
		db:    db,
		stmt:  stmt,
		log:   log.WithField("component", "msglog.sql"),
		queue: make(chan Entry, sqlQueueSize),
		done:  make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Record implements Sink.
func (s *SQLSink) Record(e Entry) {
	select {
	case s.queue <- e:
	default:
		s.log.WithField("kind", e.Kind).Warn("message log queue full, entry dropped")
	}
}

func (s *SQLSink) run() {
	defer close(s.done)
	for e := range s.queue {
		_, err := s.stmt.Exec(e.Time, e.SessionID, e.Remote, string(e.Direction), string(e.Kind), e.Title, e.Raw)
		if err != nil {
			s.log.WithError(err).Warn("message log insert failed")
		}
	}
}

// Close flushes queued entries and closes the database.
func (s *SQLSink) Close() error {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
	<-s.done
	s.stmt.Close()
	return s.db.Close()
}
