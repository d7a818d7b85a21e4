package domain

import (
	"fmt"
	"sort"
)

// QuestionBank is an immutable catalog of categories.
type QuestionBank struct {
	names      []string
	categories map[string][]*Question
}

// NewQuestionBank validates categories and freezes them into a bank.
// Questions are copied so later changes to the input do not leak in.
func NewQuestionBank(categories []Category) (*QuestionBank, error) {
	ordered := make([]Category, len(categories))
	copy(ordered, categories)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Position != ordered[j].Position {
			return ordered[i].Position < ordered[j].Position
		}
		return ordered[i].Name < ordered[j].Name
	})

	bank := &QuestionBank{
		names:      make([]string, 0, len(ordered)),
		categories: make(map[string][]*Question, len(ordered)),
	}
	for _, category := range ordered {
		if category.Name == "" {
			return nil, fmt.Errorf("%w: category name is required", ErrInvalidQuestion)
		}
		if _, dup := bank.categories[category.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidQuestion, category.Name)
		}
		if len(category.Questions) == 0 {
			return nil, fmt.Errorf("%w: category %q has no questions", ErrInvalidQuestion, category.Name)
		}
		questions := make([]*Question, 0, len(category.Questions))
		for i, q := range category.Questions {
			if err := validateQuestion(q); err != nil {
				return nil, fmt.Errorf("category %q question %d: %w", category.Name, i+1, err)
			}
			frozen := Question{
				Prompt:        q.Prompt,
				Options:       append([]string(nil), q.Options...),
				CorrectOption: q.CorrectOption,
			}
			questions = append(questions, &frozen)
		}
		bank.names = append(bank.names, category.Name)
		bank.categories[category.Name] = questions
	}
	return bank, nil
}

func validateQuestion(q Question) error {
	if q.Prompt == "" {
		return fmt.Errorf("%w: prompt is required", ErrInvalidQuestion)
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("%w: expected %d options, got %d", ErrInvalidQuestion, OptionsPerQuestion, len(q.Options))
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if _, dup := seen[o]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidQuestion, o)
		}
		seen[o] = struct{}{}
	}
	if !q.HasOption(q.CorrectOption) {
		return fmt.Errorf("%w: answer %q is not an option", ErrInvalidQuestion, q.CorrectOption)
	}
	return nil
}

// Categories returns category names in catalog order.
func (b *QuestionBank) Categories() []string {
	return append([]string(nil), b.names...)
}

// QuestionsFor returns the questions of a category in catalog order.
func (b *QuestionBank) QuestionsFor(category string) ([]*Question, error) {
	questions, ok := b.categories[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return append([]*Question(nil), questions...), nil
}

// Export returns a copy of the catalog as plain categories, positions included.
func (b *QuestionBank) Export() []Category {
	out := make([]Category, 0, len(b.names))
	for i, name := range b.names {
		questions := make([]Question, 0, len(b.categories[name]))
		for _, q := range b.categories[name] {
			questions = append(questions, Question{
				Prompt:        q.Prompt,
				Options:       append([]string(nil), q.Options...),
				CorrectOption: q.CorrectOption,
			})
		}
		out = append(out, Category{Name: name, Position: i, Questions: questions})
	}
	return out
}
