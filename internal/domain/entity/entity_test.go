package entity

import (
	"encoding/json"
	"testing"

	appErrors "medreminder/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`42`, 42},
		{`"42"`, 42},
		{`" 7 "`, 7},
		{`null`, 0},
		{`""`, 0},
		{`"abc"`, 0},
		{`-3`, 0},
		{`1.5`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestNotificationPayload_Decode(t *testing.T) {
	var p NotificationPayload
	err := json.Unmarshal([]byte(`{"userId":"7","healthProductId":42,"medicineName":"Aspirin","notificationId":"med_42_0800"}`), &p)
	require.NoError(t, err)

	assert.True(t, p.Valid())
	assert.Equal(t, ID(7), p.UserID)
	assert.Equal(t, ID(42), p.HealthProductID)
	assert.Equal(t, "Aspirin", p.DisplayName())

	p = NotificationPayload{HealthProductID: 42}
	assert.False(t, p.Valid())
	assert.Equal(t, "Unknown", p.DisplayName())
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("12")
	assert.True(t, ok)
	assert.Equal(t, ID(12), id)

	for _, s := range []string{"", "0", "-1", "x"} {
		_, ok := ParseID(s)
		assert.False(t, ok, s)
	}
}

func TestParseDoseTime(t *testing.T) {
	valid := map[string]DoseTime{
		"08:00": {8, 0},
		"8:05":  {8, 5},
		"00:00": {0, 0},
		"23:59": {23, 59},
		" 7:30": {7, 30},
	}
	for in, want := range valid {
		got, err := ParseDoseTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"24:00", "12:60", "-1:00", "noon", "8", "08:00:00", "aa:bb", ""} {
		_, err := ParseDoseTime(in)
		assert.ErrorIs(t, err, appErrors.ErrInvalidScheduleInput, in)
	}
}

func TestTriggerIDs(t *testing.T) {
	assert.Equal(t, "med_42_0800", TriggerID(42, DoseTime{Hour: 8}))
	assert.Equal(t, "med_42_2030", TriggerID(42, DoseTime{Hour: 20, Minute: 30}))
	assert.Equal(t, "med_42_", DailyTriggerPrefix(42))
	assert.Equal(t, "snooze_42_", SnoozeTriggerPrefix(42))
	assert.Equal(t, "notifications_42", TriggerIndexKey(42))
	assert.Equal(t, "08:05", DoseTime{Hour: 8, Minute: 5}.String())
}
