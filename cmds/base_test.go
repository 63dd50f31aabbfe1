package cmds

import (
	"testing"

	"github.com/lainio/err2/assert"
)

func TestValidateTime(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	assert.NoError(ValidateTime("21:45"))
	assert.NoError(ValidateTime("04:30"))
	assert.Error(ValidateTime("24:61"))
	assert.Error(ValidateTime("about midnight"))
}

func TestValidateKey(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	assert.Error(ValidateKey(""))
	assert.Error(ValidateKey("too-short"))
	assert.NoError(ValidateKey("6cih1cVgRH8yHD54nEYyPKLmdv67o8QbufxaTHot3Qxp"))
}

func TestValidateSeed(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	assert.NoError(ValidateSeed(""))
	assert.Error(ValidateSeed("123"))
	assert.NoError(ValidateSeed("000000000000000000000000Steward1"))
}
