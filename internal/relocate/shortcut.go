package relocate

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// createShortcut writes a Windows .lnk shortcut at linkPath pointing at
// targetPath. PowerShell drives the WScript.Shell COM object; when
// PowerShell is absent the same object is scripted through cscript instead.
// The created path always carries the .lnk extension.
func createShortcut(linkPath, targetPath string) (string, error) {
	lnkPath := linkPath
	if !strings.EqualFold(filepath.Ext(lnkPath), ".lnk") {
		lnkPath += ".lnk"
	}
	if err := removeStale(lnkPath); err != nil {
		return "", fmt.Errorf("remove stale entry: %w", err)
	}

	if _, err := exec.LookPath("powershell"); err == nil {
		if err := createShortcutPowerShell(lnkPath, targetPath); err != nil {
			return "", err
		}
		return lnkPath, nil
	}

	if err := createShortcutCScript(lnkPath, targetPath); err != nil {
		return "", err
	}
	return lnkPath, nil
}

func createShortcutPowerShell(lnkPath, targetPath string) error {
	script := fmt.Sprintf(
		"$ws = New-Object -ComObject WScript.Shell;"+
			"$s = $ws.CreateShortcut('%s');"+
			"$s.TargetPath = '%s';"+
			"$s.WorkingDirectory = '%s';"+
			"$s.Save();",
		psQuote(lnkPath), psQuote(targetPath), psQuote(filepath.Dir(targetPath)))

	out, err := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("powershell shortcut: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func createShortcutCScript(lnkPath, targetPath string) error {
	script := fmt.Sprintf(
		"Set ws = CreateObject(\"WScript.Shell\")\r\n"+
			"Set s = ws.CreateShortcut(\"%s\")\r\n"+
			"s.TargetPath = \"%s\"\r\n"+
			"s.WorkingDirectory = \"%s\"\r\n"+
			"s.Save\r\n",
		vbQuote(lnkPath), vbQuote(targetPath), vbQuote(filepath.Dir(targetPath)))

	tmp, err := os.CreateTemp("", "shortcut-*.vbs")
	if err != nil {
		return fmt.Errorf("cscript shortcut: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return fmt.Errorf("cscript shortcut: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cscript shortcut: %w", err)
	}

	out, err := exec.Command("cscript", "//Nologo", tmp.Name()).CombinedOutput()
	if err != nil {
		return fmt.Errorf("cscript shortcut: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// psQuote escapes a path for embedding in a single-quoted PowerShell string.
func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// vbQuote escapes a path for embedding in a double-quoted VBScript string.
func vbQuote(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}
