package config

import "runtime"

func defaultPort() string {
	switch runtime.GOOS {
	case "windows":
		return "COM3"
	case "darwin":
		return "/dev/cu.usbmodem1101"
	default:
		return "/dev/ttyACM0"
	}
}
