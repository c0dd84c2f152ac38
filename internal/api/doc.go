/*
Package api is the remote store accessor for the posts REST API.

# Endpoints

All paths are relative to a single base URL:

	GET    /posts       list all posts
	POST   /posts       create a post from {title, body}
	PUT    /posts/{id}  replace a post's title and body
	DELETE /posts/{id}  delete a post

# Behavior

  - Every call is one round trip; nothing is retried
  - Any transport error or non-2xx status is returned as an error
  - Non-2xx answers are *StatusError values (use errors.As)
  - Concurrent List calls share a single in-flight request
  - Create, Update and Delete are never deduplicated

# Diagnostics

Each call carries an X-Request-Id header. When it completes, the call is
logged through the configured zerolog logger and handed to the optional
Recorder (the request journal).

# Example Usage

	client, err := api.NewClient("https://jsonplaceholder.typicode.com",
		api.WithTimeout(10*time.Second),
		api.WithLogger(log),
	)
	if err != nil {
		return err
	}

	posts, err := client.List(ctx)
	if err != nil {
		return err
	}

	post, err := client.Create(ctx, types.Draft{Title: "Hello", Body: "World"})
*/
package api
