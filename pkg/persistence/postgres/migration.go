package postgres

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Flow definitions, stored whole as JSONB with a few extracted
			-- columns for listing and filtering.
			CREATE TABLE flows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				trigger_event VARCHAR(255),
				enabled BOOLEAN NOT NULL DEFAULT true,
				definition JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_flows_trigger_event ON flows(trigger_event);
			CREATE INDEX idx_flows_enabled ON flows(enabled);
			CREATE INDEX idx_flows_created_at ON flows(created_at);
		`,
	}
}
