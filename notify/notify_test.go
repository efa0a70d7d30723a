package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "ufund.needs.Arduino", Subject("Arduino"))
}

func TestNeedEvent_JSON(t *testing.T) {
	event := NeedEvent{
		Type: EventCheckedOut,
		Need: model.Need{Name: "Arduino", Cost: 25, Stock: 2},
		At:   time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded NeedEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, event, decoded)
	assert.Equal(t, EventCheckedOut, decoded.Type)
}
