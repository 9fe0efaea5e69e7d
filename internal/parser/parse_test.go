package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequests(t *testing.T) {
	create, err := ParseCreateTableRequest([]byte(`{"name":"vip","startChips":250,"password":"pw"}`))
	require.NoError(t, err)
	assert.Equal(t, CreateTableRequest{Name: "vip", StartChips: 250, Password: "pw"}, *create)

	_, err = ParseCreateTableRequest(nil)
	assert.ErrorIs(t, err, ErrEmptyBody)
	_, err = ParseBetRequest([]byte(`{"amount":"ten"}`))
	assert.Error(t, err)

	join, err := ParseJoinTableRequest(nil)
	require.NoError(t, err)
	assert.Empty(t, join.Password)

	frame, err := ParseClientFrame([]byte(`{"type":"continue","tableId":3,"vote":"leave"}`))
	require.NoError(t, err)
	assert.Equal(t, ClientFrame{Type: "continue", TableID: 3, Vote: "leave"}, *frame)
}
