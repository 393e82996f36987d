package repo

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const textSize = 2147483647

var (
	// FormsColumns holds the columns for the "forms" table.
	FormsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true, Size: 45},
		{Name: "message", Type: field.TypeString, Nullable: true, Size: textSize},
		{Name: "confirmation", Type: field.TypeString, Nullable: true, Size: textSize},
		{Name: "channel_id", Type: field.TypeString, Nullable: true},
		{Name: "ping", Type: field.TypeBool, Default: false},
	}
	// FormsTable holds the schema information for the "forms" table.
	FormsTable = &schema.Table{
		Name:       "forms",
		Columns:    FormsColumns,
		PrimaryKey: []*schema.Column{FormsColumns[0]},
	}
	// ModalsColumns holds the columns for the "modals" table.
	ModalsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "label", Type: field.TypeString, Size: 80},
		{Name: "title", Type: field.TypeString, Nullable: true, Size: 45},
		{Name: "form_id", Type: field.TypeInt},
	}
	// ModalsTable holds the schema information for the "modals" table.
	ModalsTable = &schema.Table{
		Name:       "modals",
		Columns:    ModalsColumns,
		PrimaryKey: []*schema.Column{ModalsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "modals_forms_modals",
				Columns:    []*schema.Column{ModalsColumns[3]},
				RefColumns: []*schema.Column{FormsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "modal_form_id_label",
				Unique:  true,
				Columns: []*schema.Column{ModalsColumns[3], ModalsColumns[1]},
			},
		},
	}
	// QuestionsColumns holds the columns for the "questions" table.
	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "label", Type: field.TypeString, Size: 45},
		{Name: "placeholder", Type: field.TypeString, Nullable: true, Size: 100},
		{Name: "paragraph", Type: field.TypeBool, Default: false},
		{Name: "required", Type: field.TypeBool, Default: true},
		{Name: "min_length", Type: field.TypeInt, Nullable: true},
		{Name: "max_length", Type: field.TypeInt, Nullable: true},
		{Name: "identity", Type: field.TypeBool, Default: false},
		{Name: "modal_id", Type: field.TypeInt},
	}
	// QuestionsTable holds the schema information for the "questions" table.
	QuestionsTable = &schema.Table{
		Name:       "questions",
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_modals_questions",
				Columns:    []*schema.Column{QuestionsColumns[8]},
				RefColumns: []*schema.Column{ModalsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "question_modal_id_label",
				Unique:  true,
				Columns: []*schema.Column{QuestionsColumns[8], QuestionsColumns[1]},
			},
		},
	}
	// PublishedButtonsColumns holds the columns for the "published_buttons" table.
	// form_id has no foreign key; a button outlives the form it opens.
	PublishedButtonsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "message_id", Type: field.TypeString},
		{Name: "channel_id", Type: field.TypeString},
		{Name: "position", Type: field.TypeInt},
		{Name: "label", Type: field.TypeString, Size: 80},
		{Name: "emoji", Type: field.TypeString, Nullable: true, Size: 32},
		{Name: "style", Type: field.TypeInt, Default: 1},
		{Name: "form_id", Type: field.TypeInt},
	}
	// PublishedButtonsTable holds the schema information for the "published_buttons" table.
	PublishedButtonsTable = &schema.Table{
		Name:       "published_buttons",
		Columns:    PublishedButtonsColumns,
		PrimaryKey: []*schema.Column{PublishedButtonsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "publishedbutton_message_id_label",
				Unique:  true,
				Columns: []*schema.Column{PublishedButtonsColumns[1], PublishedButtonsColumns[4]},
			},
		},
	}
	// ResponsesColumns holds the columns for the "responses" table.
	// Responses and answers are never deleted; removing a form or question
	// only clears the reference.
	ResponsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "username", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "form_id", Type: field.TypeInt, Nullable: true},
	}
	// ResponsesTable holds the schema information for the "responses" table.
	ResponsesTable = &schema.Table{
		Name:       "responses",
		Columns:    ResponsesColumns,
		PrimaryKey: []*schema.Column{ResponsesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "responses_forms_responses",
				Columns:    []*schema.Column{ResponsesColumns[3]},
				RefColumns: []*schema.Column{FormsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
	}
	// AnswersColumns holds the columns for the "answers" table.
	AnswersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "answer", Type: field.TypeString, Nullable: true, Size: textSize},
		{Name: "response_id", Type: field.TypeInt},
		{Name: "question_id", Type: field.TypeInt, Nullable: true},
	}
	// AnswersTable holds the schema information for the "answers" table.
	AnswersTable = &schema.Table{
		Name:       "answers",
		Columns:    AnswersColumns,
		PrimaryKey: []*schema.Column{AnswersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "answers_responses_answers",
				Columns:    []*schema.Column{AnswersColumns[2]},
				RefColumns: []*schema.Column{ResponsesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "answers_questions_answers",
				Columns:    []*schema.Column{AnswersColumns[3]},
				RefColumns: []*schema.Column{QuestionsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		FormsTable,
		ModalsTable,
		QuestionsTable,
		PublishedButtonsTable,
		ResponsesTable,
		AnswersTable,
	}
)

func init() {
	ModalsTable.ForeignKeys[0].RefTable = FormsTable
	QuestionsTable.ForeignKeys[0].RefTable = ModalsTable
	ResponsesTable.ForeignKeys[0].RefTable = FormsTable
	AnswersTable.ForeignKeys[0].RefTable = ResponsesTable
	AnswersTable.ForeignKeys[1].RefTable = QuestionsTable
}

// MigrateOptions controls how Migrate alters an existing schema.
type MigrateOptions struct {
	// SafeMode keeps columns and indexes that are no longer declared.
	SafeMode bool
}

// Migrate creates or upgrades every table.
func (c *Client) Migrate(ctx context.Context, opts MigrateOptions) error {
	m, err := schema.NewMigrate(c.driver,
		schema.WithForeignKeys(true),
		schema.WithDropColumn(!opts.SafeMode),
		schema.WithDropIndex(!opts.SafeMode),
	)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
