// Package pageqa embeds the scrape-embed-answer pipeline as a Go library:
// scrape a web page into paragraph records, store their embeddings in Redis,
// and answer questions grounded on the most similar paragraphs.
//
//	client, _ := pageqa.New(ctx,
//	    pageqa.WithRedis("localhost:6379", ""),
//	    pageqa.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "text-embedding-3-small", "gpt-4o-mini"),
//	)
//	defer client.Close()
//
//	stored, _ := client.Ingest(ctx, "https://en.wikipedia.org/wiki/Elon_Musk")
//	answer, _ := client.Ask(ctx, "Where was Elon Musk born?")
package pageqa
