package driver

import (
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
)

// chromiumArgs is the launch argument set shared by Chrome and Edge.
var chromiumArgs = []string{
	"--no-sandbox",
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--disable-popup-blocking",
	"--disable-notifications",
	"--window-size=1920,1080",
}

// capabilitiesFor builds the desired capabilities for an engine, including
// the conditional headless flag.
func capabilitiesFor(engine string, headless bool) selenium.Capabilities {
	switch engine {
	case Firefox:
		return firefoxCapabilities(headless)
	case Edge:
		return edgeCapabilities(headless)
	default:
		return chromeCapabilities(headless)
	}
}

func chromeCapabilities(headless bool) selenium.Capabilities {
	args := append([]string{}, chromiumArgs...)
	if headless {
		args = append(args, "--headless")
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{Args: args})
	return caps
}

func firefoxCapabilities(headless bool) selenium.Capabilities {
	args := []string{"--width=1920", "--height=1080"}
	if headless {
		args = append(args, "-headless")
	}

	caps := selenium.Capabilities{"browserName": "firefox"}
	caps.AddFirefox(firefox.Capabilities{Args: args})
	return caps
}

// edgeCapabilities is built by hand: the selenium package has no Edge helper,
// but msedgedriver understands the ChromeDriver options shape under the
// ms:edgeOptions key.
func edgeCapabilities(headless bool) selenium.Capabilities {
	args := append([]string{}, chromiumArgs...)
	if headless {
		args = append(args, "--headless")
	}

	return selenium.Capabilities{
		"browserName": "MicrosoftEdge",
		"ms:edgeOptions": map[string]interface{}{
			"args": args,
		},
	}
}
