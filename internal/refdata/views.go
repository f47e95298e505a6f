package refdata

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUserNotFound is returned when no enabled user matches a query.
var ErrUserNotFound = errors.New("user not found")

// User is an enabled account that can log work items.
type User struct {
	ID      string `json:"id"`
	EmpID   string `json:"empId"`
	Name    string `json:"name"`
	LoginID string `json:"loginId"`
	IsAdmin bool   `json:"isAdmin"`
}

// System is a selectable business system.
type System struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// SubModule belongs to exactly one parent system.
type SubModule struct {
	ID           string `json:"id"`
	ParentSystem string `json:"parentSystem"`
	Name         string `json:"name"`
	Order        int    `json:"order"`
}

// QuestionType is a channel a question can arrive through.
type QuestionType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Employee is a person who can ask questions.
type Employee struct {
	ID    string `json:"id"`
	EmpID string `json:"empId"`
	Name  string `json:"name"`
}

// FormOptions are the choices offered when logging a work item.
type FormOptions struct {
	Systems       []System       `json:"systems"`
	SubModules    []SubModule    `json:"subModules"`
	QuestionTypes []QuestionType `json:"questionTypes"`
	Employees     []Employee     `json:"employees"`
}

// UsersFrom derives the enabled users of a users sheet.
func UsersFrom(sheet Sheet) []User {
	users := make([]User, 0, len(sheet.Rows))

	for _, row := range sheet.Rows {
		if !enabled(row, HeaderUserEnabled) {
			continue
		}

		users = append(users, User{
			ID:      row.ID(),
			EmpID:   row.String(HeaderEmpID),
			Name:    row.String(HeaderUserName),
			LoginID: row.String(HeaderLoginID),
			IsAdmin: row.Flag(HeaderIsAdmin),
		})
	}

	return users
}

// OptionsFrom derives form options from the option sheets. Disabled rows
// are dropped; systems, sub-modules and question types sort by their
// order column, ties keeping sheet order.
func OptionsFrom(systems, subModules, questionTypes, employees Sheet) FormOptions {
	var opts FormOptions

	for _, row := range systems.Rows {
		if enabled(row, HeaderEnabled) {
			opts.Systems = append(opts.Systems, System{
				ID: row.ID(), Name: row.String(HeaderSystem), Order: row.Int(HeaderOrder),
			})
		}
	}

	for _, row := range subModules.Rows {
		if enabled(row, HeaderEnabled) {
			opts.SubModules = append(opts.SubModules, SubModule{
				ID:           row.ID(),
				ParentSystem: row.String(HeaderParentSystem),
				Name:         row.String(HeaderSubModule),
				Order:        row.Int(HeaderOrder),
			})
		}
	}

	for _, row := range questionTypes.Rows {
		if enabled(row, HeaderEnabled) {
			opts.QuestionTypes = append(opts.QuestionTypes, QuestionType{
				ID: row.ID(), Name: row.String(HeaderQuestionType), Order: row.Int(HeaderOrder),
			})
		}
	}

	for _, row := range employees.Rows {
		if enabled(row, HeaderEnabled) {
			opts.Employees = append(opts.Employees, Employee{
				ID: row.ID(), EmpID: row.String(HeaderEmployeeID), Name: row.String(HeaderEmployeeName),
			})
		}
	}

	slices.SortStableFunc(opts.Systems, func(a, b System) int { return cmp.Compare(a.Order, b.Order) })
	slices.SortStableFunc(opts.SubModules, func(a, b SubModule) int { return cmp.Compare(a.Order, b.Order) })
	slices.SortStableFunc(opts.QuestionTypes, func(a, b QuestionType) int { return cmp.Compare(a.Order, b.Order) })

	return opts
}

// enabled treats a row without the flag column as enabled.
func enabled(row Row, header string) bool {
	if _, ok := row[header]; !ok {
		return true
	}

	return row.Flag(header)
}

// SystemNames returns the selectable system names in order.
func (o *FormOptions) SystemNames() []string {
	names := make([]string, 0, len(o.Systems))
	for _, s := range o.Systems {
		names = append(names, s.Name)
	}

	return names
}

// SubModulesOf returns the sub-module names of system in order.
func (o *FormOptions) SubModulesOf(system string) []string {
	names := make([]string, 0)

	for _, sm := range o.SubModules {
		if sm.ParentSystem == system {
			names = append(names, sm.Name)
		}
	}

	return names
}

// QuestionTypeNames returns the question type names in order.
func (o *FormOptions) QuestionTypeNames() []string {
	names := make([]string, 0, len(o.QuestionTypes))
	for _, q := range o.QuestionTypes {
		names = append(names, q.Name)
	}

	return names
}

// EmployeeNames returns the employee names in sheet order.
func (o *FormOptions) EmployeeNames() []string {
	names := make([]string, 0, len(o.Employees))
	for _, e := range o.Employees {
		names = append(names, e.Name)
	}

	return names
}

// FindUser looks up a user by id, login id, employee id or name, in that
// order of precedence.
func FindUser(users []User, query string) (User, error) {
	query = strings.TrimSpace(query)

	matchers := []func(u *User) bool{
		func(u *User) bool { return u.ID == query },
		func(u *User) bool { return strings.EqualFold(u.LoginID, query) },
		func(u *User) bool { return strings.EqualFold(u.EmpID, query) },
		func(u *User) bool { return u.Name == query },
	}

	for _, match := range matchers {
		for i := range users {
			if match(&users[i]) {
				return users[i], nil
			}
		}
	}

	return User{}, fmt.Errorf("%w: %q", ErrUserNotFound, query)
}
