package database

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username         VARCHAR(64)  NOT NULL UNIQUE,
		display_name     VARCHAR(120) NOT NULL DEFAULT '',
		password_hash    VARCHAR(255) NOT NULL,
		role             ENUM('admin','member') NOT NULL DEFAULT 'member',
		can_add_shows    BOOLEAN NOT NULL DEFAULT FALSE,
		can_view_amounts BOOLEAN NOT NULL DEFAULT FALSE,
		can_edit_name    BOOLEAN NOT NULL DEFAULT TRUE,
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_sessions_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS shows (
		id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title             VARCHAR(200) NOT NULL,
		city              VARCHAR(120) NOT NULL,
		show_type         VARCHAR(60)  NOT NULL,
		organization_name VARCHAR(200) NULL,
		public_show_for   VARCHAR(200) NULL,
		total_amount      BIGINT NOT NULL DEFAULT 0,
		advance_payment   BIGINT NOT NULL DEFAULT 0,
		show_date         DATETIME NULL,
		status            ENUM('upcoming','completed','cancelled') NOT NULL DEFAULT 'upcoming',
		is_paid           BOOLEAN NOT NULL DEFAULT FALSE,
		notes             TEXT NULL,
		poc_name          VARCHAR(120) NULL,
		poc_phone         VARCHAR(40)  NULL,
		poc_email         VARCHAR(200) NULL,
		created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_shows_date (show_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS expenses (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title      VARCHAR(200) NOT NULL,
		category   VARCHAR(60)  NOT NULL DEFAULT 'general',
		amount     BIGINT NOT NULL,
		spent_on   DATETIME NOT NULL,
		show_id    BIGINT UNSIGNED NULL,
		notes      TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_expenses_spent_on (spent_on),
		CONSTRAINT fk_expenses_show FOREIGN KEY (show_id) REFERENCES shows(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}
