package bridgecontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const scQueryRunning = `
SERVICE_NAME: OpenControlBridge
        TYPE               : 10  WIN32_OWN_PROCESS
        STATE              : 4  RUNNING
                                (STOPPABLE, NOT_PAUSABLE, ACCEPTS_SHUTDOWN)
        WIN32_EXIT_CODE    : 0  (0x0)
        SERVICE_EXIT_CODE  : 0  (0x0)
        CHECKPOINT         : 0x0
        WAIT_HINT          : 0x0
`

const scQueryStopped = `
SERVICE_NAME: OpenControlBridge
        TYPE               : 10  WIN32_OWN_PROCESS
        STATE              : 1  STOPPED
        WIN32_EXIT_CODE    : 0  (0x0)
        SERVICE_EXIT_CODE  : 0  (0x0)
        CHECKPOINT         : 0x0
        WAIT_HINT          : 0x0
`

func TestParseSCStateRunning(t *testing.T) {
	assert.Equal(t, ServiceRunning, parseSCState(scQueryRunning))
}

func TestParseSCStateStopped(t *testing.T) {
	assert.Equal(t, ServiceStopped, parseSCState(scQueryStopped))
}

func TestParseLaunchctlListStatus(t *testing.T) {
	assert.Equal(t, ServiceRunning, parseLaunchctlListStatus("1234\t0\tcom.petitechose.open-control-bridge\n"))
	assert.Equal(t, ServiceStopped, parseLaunchctlListStatus("-\t0\tcom.petitechose.open-control-bridge\n"))
}
