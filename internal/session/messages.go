package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/tokpost/internal/repository"
)

const (
	slashCommandStartDescription   = "Show what this bot can do."
	slashCommandHelpDescription    = "Show the available commands."
	slashCommandLoginDescription   = "Log in to a TikTok account."
	slashCommandLoginNameOption    = "Account name to log in with."
	slashCommandUploadDescription  = "Start uploading a video to TikTok."
	slashCommandCancelDescription  = "Cancel the current upload."
	slashCommandHistoryDescription = "Show your most recent uploads."

	messageHelp = "Welcome to TikTok Uploader Bot!\n\n" +
		"Commands:\n" +
		"/login <name> - Login to TikTok\n" +
		"/upload - Start the video upload process\n" +
		"/cancel - Cancel the current operation\n" +
		"/history - Show your recent uploads"

	messageWrongGuild       = "This bot can't be used in this server."
	messageUnknownCommand   = "Unknown command. Send /help to see what I can do."
	messageGenericError     = "An error occurred while processing your request."
	messageAlreadyUploading = "An upload is already in progress. Finish it or send /cancel first."
	messageNothingToCancel  = "There is no upload in progress."
	messageCancelled        = "Upload cancelled."

	messageLoginUsage = "Please provide a name for login. Usage: /login <name>"

	messageUploadStart     = "Let's upload a video to TikTok!\nPlease send me the video you want to upload."
	messageSendValidVideo  = "Please send a valid video file."
	messageDownloading     = "Downloading video..."
	messageDownloadFailed  = "Couldn't download that video. Please send it again."
	messageVideoReceived   = "Video received! Now, please enter the TikTok username to upload with:"
	messageAskUsername     = "Please enter the TikTok username to upload with:"
	messageAskTitle        = "Great! Now, please enter the title for your video:"
	messageTitleReprompt   = "Please enter the title for your video:"
	messageUploadStarting  = "Starting upload to TikTok..."
	messageUploadSucceeded = "Successfully uploaded to TikTok!"

	scheduleFormatsHint = "- MM/DD/YYYY HHpm (e.g., 12/13/2024 8pm)\n" +
		"- tomorrow 3pm\n" +
		"- next friday 2:30pm\n"

	messageSchedulePrompt = "When would you like to schedule this video?\n" +
		"You can use formats like:\n" + scheduleFormatsHint +
		"Or type 'no' for immediate upload:"
	messageScheduleUnparseable = "Couldn't understand that date format. Please try:\n" + scheduleFormatsHint +
		"Or 'no' for immediate upload:"

	messageHistoryDisabled = "Upload history is not enabled on this bot."
	messageHistoryEmpty    = "You haven't uploaded anything yet."
	messageHistoryFailed   = "Couldn't load your upload history."

	discordMessageLimit = 2000
	historyTitleRunes   = 80
	detailRunes         = 300

	// %B %d, %Y at %I:%M %p
	displayTimeLayout = "January 02, 2006 at 03:04 PM MST"
	debugTimeLayout   = "2006-01-02 15:04:05"
)

func loginAttemptMessage(name string) string {
	return fmt.Sprintf("Attempting to login with name: %s", name)
}

func loginSucceededMessage(name string) string {
	return fmt.Sprintf("Successfully logged in as %s", name)
}

func loginFailedMessage(err error) string {
	return fmt.Sprintf("Login failed: %s", boundDetail(err.Error()))
}

func videoTooLargeMessage(limit int64) string {
	return fmt.Sprintf("That video is too large (limit %d MB). Please send a smaller file.", limit>>20)
}

func tooSoonMessage(minLead time.Duration) string {
	return fmt.Sprintf("Schedule time must be at least %s in the future.\nPlease enter a later time.", humanizeDuration(minLead))
}

func tooFarMessage(maxHorizon time.Duration) string {
	return fmt.Sprintf("Cannot schedule video more than %s in advance.\nPlease enter an earlier time.", humanizeDuration(maxHorizon))
}

func scheduleConfirmationMessage(at time.Time, delaySeconds int64) string {
	return fmt.Sprintf("Scheduling video for: %s\n(%d seconds from now)\nUploading now...", at.Format(displayTimeLayout), delaySeconds)
}

func scheduleDebugMessage(now, at time.Time, delaySeconds int64) string {
	return fmt.Sprintf("Debug Info:\nCurrent time: %s\nScheduled time: %s\nSeconds from now: %d",
		now.Format(debugTimeLayout), at.Format(debugTimeLayout), delaySeconds)
}

func uploadSucceededMessage(scheduledAt *time.Time) string {
	if scheduledAt == nil {
		return messageUploadSucceeded
	}
	return fmt.Sprintf("Successfully uploaded to TikTok (scheduled for %s)!", scheduledAt.Format(displayTimeLayout))
}

func uploadFailedMessage(detail string) string {
	if detail == "" {
		return "Failed to upload video to TikTok."
	}
	return fmt.Sprintf("Failed to upload video to TikTok.\n%s", detail)
}

func historyMessage(records []repository.UploadRecord, loc *time.Location) string {
	lines := []string{"Your recent uploads:"}
	for _, r := range records {
		when := "immediate"
		if r.ScheduledAt != nil {
			when = "scheduled for " + r.ScheduledAt.In(loc).Format(displayTimeLayout)
		}
		status := "ok"
		if r.Status != repository.UploadStatusSucceeded {
			status = "failed"
		}
		lines = append(lines, fmt.Sprintf("- [%s] @%s \"%s\" (%s, %s)",
			r.CreatedAt.In(loc).Format(debugTimeLayout), truncateRunes(r.AccountName, historyTitleRunes),
			truncateRunes(r.Title, historyTitleRunes), when, status))
	}
	return truncateRunes(strings.Join(lines, "\n"), discordMessageLimit)
}

func humanizeDuration(d time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case d >= day && d%day == 0:
		return plural(int64(d/day), "day")
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	default:
		return plural(int64(d/time.Minute), "minute")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func boundDetail(s string) string {
	return truncateRunes(strings.TrimSpace(s), detailRunes)
}

// truncateRunes keeps the result within limit runes, ellipsis included.
func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
