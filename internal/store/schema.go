package store

const schema = `
-- Generated quizzes. questions holds the JSON-encoded question list.
CREATE TABLE IF NOT EXISTS quizzes (
    quiz_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    email_context TEXT NOT NULL,
    questions TEXT NOT NULL,
    num_questions INTEGER NOT NULL,
    is_completed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quizzes_user ON quizzes(user_id);

-- Graded submissions. A result may reference a quiz that was never stored
-- when the client submitted the quiz body inline.
CREATE TABLE IF NOT EXISTS quiz_results (
    result_id TEXT PRIMARY KEY,
    quiz_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    score REAL NOT NULL,
    total_questions INTEGER NOT NULL,
    correct_answers INTEGER NOT NULL,
    results TEXT NOT NULL,
    summary TEXT NOT NULL,
    time_taken_seconds INTEGER,
    completed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_user_completed ON quiz_results(user_id, completed_at);

CREATE TABLE IF NOT EXISTS donor_emails (
    email_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    subject TEXT NOT NULL DEFAULT '',
    sender TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'general',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_emails_user ON donor_emails(user_id);

CREATE TABLE IF NOT EXISTS topic_progress (
    user_id TEXT NOT NULL,
    topic TEXT NOT NULL,
    total_attempts INTEGER NOT NULL DEFAULT 0,
    correct_answers INTEGER NOT NULL DEFAULT 0,
    accuracy_rate REAL NOT NULL DEFAULT 0,
    first_attempt TEXT NOT NULL,
    last_attempt TEXT NOT NULL,
    PRIMARY KEY (user_id, topic)
);

CREATE TABLE IF NOT EXISTS user_stats (
    user_id TEXT PRIMARY KEY,
    total_quizzes INTEGER NOT NULL DEFAULT 0,
    total_score REAL NOT NULL DEFAULT 0,
    average_score REAL NOT NULL DEFAULT 0,
    last_quiz_date TEXT NOT NULL
);

-- One row per provider call.
CREATE TABLE IF NOT EXISTS llm_request_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    purpose TEXT NOT NULL,
    input_tokens INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    cost_usd REAL NOT NULL DEFAULT 0,
    latency_ms INTEGER NOT NULL DEFAULT 0,
    success INTEGER NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    request_body TEXT NOT NULL DEFAULT '',
    response_body TEXT NOT NULL DEFAULT ''
);
`
