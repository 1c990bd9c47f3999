// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open accepts "sqlite" (modernc.org/sqlite, pure Go) or "postgres" (lib/pq):

	conn, err := db.Open(db.TypeSQLite, "file:polls.db")

SQLite connections get foreign keys and a busy timeout, and are limited to
a single open connection.

# Schema Creation

CreateSchema initializes all required tables for the given database type:

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - app_user: accounts (unique username, bcrypt hash)
  - question: poll prompt with pub_date and optional end_date
  - choice: options per question
  - vote: one row per (user, question)

# Relationships

	question 1──* choice
	choice   1──* vote   (via (choice_id, question_id))
	app_user 1──* vote

All foreign keys use ON DELETE CASCADE. vote(choice_id, question_id)
references choice(id, question_id), so a vote always names a choice of
its own question.

# Constraint Errors

IsUniqueViolation recognizes unique violations from both drivers:

	if db.IsUniqueViolation(err) {
		// retry or report a conflict
	}
*/
package db
