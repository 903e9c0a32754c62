package redis

var NextBackoff = nextBackoff
