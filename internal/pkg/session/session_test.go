package session

import "testing"

func TestKeys(t *testing.T) {
	if got := loginKey("10.0.0.1", "Agent@Edman.com"); got != "ratelimit:login:10.0.0.1:agent@edman.com" {
		t.Fatalf("loginKey = %s", got)
	}
	if got := blacklistKey("01J"); got != "blacklist:01J" {
		t.Fatalf("blacklistKey = %s", got)
	}
}
