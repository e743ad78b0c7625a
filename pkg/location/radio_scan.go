package location

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"googlemaps.github.io/maps"
)

// runCommand executes a radio inspection tool and returns its stdout.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s not found: %w", name, err)
	}
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return out, nil
}

// getWiFiAccessPoints lists nearby access points through NetworkManager.
func getWiFiAccessPoints(ctx context.Context) ([]maps.WiFiAccessPoint, error) {
	out, err := runCommand(ctx, "nmcli", "-t", "-f", "BSSID,SIGNAL", "dev", "wifi", "list")
	if err != nil {
		return nil, err
	}
	return parseNmcliWiFi(out)
}

// getCellTowers reads the serving cell of the given ModemManager modem.
func getCellTowers(ctx context.Context, modemIndex int) ([]maps.CellTower, error) {
	out, err := runCommand(ctx, "mmcli", "-m", strconv.Itoa(modemIndex), "--location-get", "--output-keyvalue")
	if err != nil {
		return nil, err
	}
	tower, err := parseMmcliCell(out)
	if err != nil {
		return nil, err
	}
	return []maps.CellTower{tower}, nil
}

// parseNmcliWiFi parses terse nmcli output. Colons inside the BSSID are
// escaped as "\:"; SIGNAL is a 0-100 quality converted to an approximate dBm.
func parseNmcliWiFi(out []byte) ([]maps.WiFiAccessPoint, error) {
	var aps []maps.WiFiAccessPoint

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.ReplaceAll(scanner.Text(), `\:`, "-")
		bssid, quality, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		mac := strings.ReplaceAll(strings.TrimSpace(bssid), "-", ":")
		if !isValidMAC(mac) {
			continue
		}
		q, err := strconv.Atoi(strings.TrimSpace(quality))
		if err != nil || q < 0 || q > 100 {
			continue
		}
		aps = append(aps, maps.WiFiAccessPoint{
			MACAddress:     strings.ToUpper(mac),
			SignalStrength: float64(q)/2 - 100,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan nmcli output: %w", err)
	}
	return aps, nil
}

// parseMmcliCell extracts the serving cell from `mmcli --location-get` key/value output.
func parseMmcliCell(out []byte) (maps.CellTower, error) {
	var tower maps.CellTower
	var lac, tac int

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if value == "" || value == "--" {
			continue
		}

		switch key {
		case "modem.location.3gpp.mcc":
			tower.MobileCountryCode, _ = strconv.Atoi(value)
		case "modem.location.3gpp.mnc":
			tower.MobileNetworkCode, _ = strconv.Atoi(value)
		case "modem.location.3gpp.lac":
			lac = parseHex(value)
		case "modem.location.3gpp.tac":
			tac = parseHex(value)
		case "modem.location.3gpp.cid":
			tower.CellID = parseHex(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return maps.CellTower{}, fmt.Errorf("failed to scan mmcli output: %w", err)
	}

	// LTE cells report a tracking area instead of a location area.
	tower.LocationAreaCode = lac
	if lac == 0 {
		tower.LocationAreaCode = tac
	}

	if tower.MobileCountryCode == 0 || tower.CellID == 0 {
		return maps.CellTower{}, errors.New("incomplete cell tower data")
	}
	return tower, nil
}

func parseHex(value string) int {
	n, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0
	}
	return int(n)
}

// isValidMAC checks for six colon separated hex octets, e.g. "00:14:22:01:23:45".
func isValidMAC(mac string) bool {
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return false
	}
	for _, part := range parts {
		if len(part) != 2 {
			return false
		}
		if _, err := strconv.ParseUint(part, 16, 8); err != nil {
			return false
		}
	}
	return true
}
