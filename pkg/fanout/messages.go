package fanout

import "fmt"

func followMessage(actor string) string {
	return fmt.Sprintf("%s started following you", actor)
}

func newPostMessage(actor, title string) string {
	if title == "" {
		return fmt.Sprintf("%s published a new post", actor)
	}
	return fmt.Sprintf("%s published a new post: \"%s\"", actor, title)
}

func postLikeMessage(actor, title string) string {
	if title == "" {
		return fmt.Sprintf("%s liked your post", actor)
	}
	return fmt.Sprintf("%s liked your post: \"%s\"", actor, title)
}

func commentMessage(actor, title string) string {
	if title == "" {
		return fmt.Sprintf("%s commented on your post", actor)
	}
	return fmt.Sprintf("%s commented on your post: \"%s\"", actor, title)
}

func mentionMessage(actor, title string) string {
	if title == "" {
		return fmt.Sprintf("%s mentioned you in a post", actor)
	}
	return fmt.Sprintf("%s mentioned you in a post: \"%s\"", actor, title)
}
