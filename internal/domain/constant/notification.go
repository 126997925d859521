package constant

// ActionIdentifier names a response action attached to a reminder notification.
type ActionIdentifier string

const (
	// ActionTaken marks the dose as taken and decrements stock.
	ActionTaken ActionIdentifier = "TAKEN"
	// ActionMissed marks the dose as missed.
	ActionMissed ActionIdentifier = "MISSED"
	// ActionSnooze re-delivers the reminder once after the snooze delay.
	ActionSnooze ActionIdentifier = "SNOOZE"
	// ActionDefault is reported when the notification body is tapped without pressing a button.
	ActionDefault ActionIdentifier = "DEFAULT"
)

func (a ActionIdentifier) String() string {
	return string(a)
}

const (
	// CategoryMedicineReminder is the category carrying the TAKEN/MISSED(/SNOOZE) actions.
	CategoryMedicineReminder = "MEDICINE_REMINDER"
	// ChannelMedicineReminders is the delivery channel used on platforms that require one.
	ChannelMedicineReminders = "medicine-reminders"
	// SoundDefault selects the platform default notification sound.
	SoundDefault = "default"
)

const (
	// TriggerIndexKeyPrefix prefixes the key-value entry holding a medicine's trigger IDs.
	TriggerIndexKeyPrefix = "notifications_"
	// LineRecipientKey holds the LINE user that receives presented notifications and alerts.
	LineRecipientKey = "line_recipient"
)
