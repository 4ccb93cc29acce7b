package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"tap-rating-bot/internal/domain/user"
)

const timeLayout = "2006-01-02 15:04:05"

var userHeaders = []string{
	"ID", "Telegram ID", "Username", "First Name", "Last Name",
	"Active", "Admin", "Taps", "Created", "Updated",
}

func userRow(u *user.User) []string {
	return []string{
		fmt.Sprint(u.ID()),
		fmt.Sprint(u.TelegramID()),
		orDash(u.Username()),
		orDash(u.FirstName()),
		orDash(u.LastName()),
		yesNo(u.IsActive()),
		yesNo(u.IsAdmin()),
		fmt.Sprint(u.Taps()),
		u.CreatedAt().Format(timeLayout),
		u.UpdatedAt().Format(timeLayout),
	}
}

// printUsers renders one row per user
func printUsers(out io.Writer, users []*user.User) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeRow(w, userHeaders)
	for _, u := range users {
		writeRow(w, userRow(u))
	}
	return w.Flush()
}

// printUser renders a single user as key/value lines
func printUser(out io.Writer, u *user.User) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, value := range userRow(u) {
		fmt.Fprintf(w, "%s:\t%s\n", userHeaders[i], value)
	}
	return w.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
